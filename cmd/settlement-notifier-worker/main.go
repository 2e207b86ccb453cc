package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/notifier"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/config"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/db"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/kafka"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/logger"
	"github.com/bmoreira/bet-ledger-poc/internal/shared/metrics"
)

// kafkaDLQ adapta o writer compartilhado ao contrato de DLQ do handler.
type kafkaDLQ struct{ w *kafkago.Writer }

func (d *kafkaDLQ) Publish(ctx context.Context, key string, payload []byte) error {
	return kafka.WriteJSON(ctx, d.w, key, payload)
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres para a trilha de auditoria das liquidações
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: consome bet_settled emitido pela reconciliação
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetSettled, "settlement-notifier")
	defer reader.Close()

	var dlq notifier.DeadLetter
	if cfg.TopicBetSettledDLQ != "" {
		dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettledDLQ)
		defer dlqWriter.Close()
		dlq = &kafkaDLQ{w: dlqWriter}
	}

	handler := notifier.NewHandler(log, &notifier.PostgresRecorder{DB: pg}, dlq)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("settlement-notifier-worker started", zap.String("consume", cfg.TopicBetSettled))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	// Loop principal: consome liquidações e grava a trilha de auditoria
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("settlement-notifier-worker stopped")
				return
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		handler.Handle(ctx, value)
	}
}
