package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/money"
	lphttp "github.com/bmoreira/bet-ledger-poc/internal/line-provider/http"
	"github.com/bmoreira/bet-ledger-poc/internal/line-provider/repo"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/cache"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/config"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/logger"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Repositório de eventos: memória (default) ou Redis
	var events repo.EventRepository
	healthFn := func(ctx context.Context) error { return nil }

	switch cfg.EventStoreBackend {
	case "redis":
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		events = repo.NewRedis(rdb)
		healthFn = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		events = repo.NewMemory(seedEvents()...)
	}

	metrics.StartMetricsServer(cfg.MetricsPort, healthFn)
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	api := &lphttp.API{Log: log, Repo: events}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	go func() {
		log.Info("line-provider listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api", zap.Error(err))
		}
	}()

	// Shutdown gracioso
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("line-provider stopped")
}

// seedEvents povoa o backend em memória com alguns eventos apostáveis,
// como o ambiente local de demonstração.
func seedEvents() []event.Event {
	now := time.Now().Unix()
	return []event.Event{
		{ID: 1, Coefficient: money.MustParse("1.20"), Deadline: now + 600, Status: event.StatusNew},
		{ID: 2, Coefficient: money.MustParse("1.15"), Deadline: now + 60, Status: event.StatusNew},
		{ID: 3, Coefficient: money.MustParse("1.67"), Deadline: now + 90, Status: event.StatusNew},
	}
}
