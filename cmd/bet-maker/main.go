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
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/gateway"
	bmhttp "github.com/bmoreira/bet-ledger-poc/internal/bet-maker/http"
	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/poller"
	kpub "github.com/bmoreira/bet-ledger-poc/internal/bet-maker/producer"
	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/repo"
	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/service"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/config"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/db"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/kafka"
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

	// Postgres + migrações
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()
	if err := db.Migrate(pg, cfg.MigrationsDir); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	// Kafka writer (topic bet_settled)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer writer.Close()

	// deps
	bets := repo.NewPostgres(pg)
	events := gateway.New(cfg.LineProviderURL, cfg.GatewayTimeout)
	publ := kpub.NewKafkaPublisher(writer)
	svc := service.New(log, bets, events, publ)

	// métricas do loop de reconciliação
	iterations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "betmaker_poll_iterations_total",
		Help: "Iterações de reconciliação concluídas com sucesso",
	})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "betmaker_bets_settled_total",
		Help: "Apostas transicionadas para WON/LOST pela reconciliação",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "betmaker_poll_failures_total",
		Help: "Iterações de reconciliação que falharam",
	})
	prometheus.MustRegister(iterations, settled, failures)

	// Poller de reconciliação: handle explícito, parado no shutdown
	p := poller.New(log, svc, poller.Config{
		Interval:      cfg.PollInterval,
		BackoffFactor: cfg.BackoffFactor,
		MaxBackoff:    cfg.MaxBackoff,
	})
	p.OnIteration = func() { iterations.Inc() }
	p.OnSettled = func(n int) { settled.Add(float64(n)) }
	p.OnFailure = func() { failures.Inc() }
	p.Start()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	// HTTP público
	api := bmhttp.NewServer(log, svc)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	go func() {
		log.Info("bet-maker listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api", zap.Error(err))
		}
	}()

	// Shutdown gracioso: para de aceitar requests, depois para o poller
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	p.Stop()
	log.Info("bet-maker stopped")
}
