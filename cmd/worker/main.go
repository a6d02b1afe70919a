package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/equipdesk/backoffice/internal/config"
	"github.com/equipdesk/backoffice/internal/inbox"
	"github.com/equipdesk/backoffice/internal/messaging"
	"github.com/equipdesk/backoffice/internal/settings"
	"github.com/equipdesk/backoffice/internal/telemetry"
	"github.com/equipdesk/backoffice/internal/worker"
)

const consumerGroup = "inbox-worker"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if cfg.Database.URL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "worker", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	db, err := telemetry.OpenDB("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	handler := worker.NewHandler(inbox.NewRepository(db), settings.NewRepository(db), logger)

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	subscriptions := []struct {
		topic  string
		handle func(ctx context.Context, payload []byte) error
	}{
		{messaging.TopicOrderCreated, handler.HandleOrderCreated},
		{messaging.TopicQuoteAccepted, handler.HandleQuoteAccepted},
		{messaging.TopicFulfillmentUpdated, handler.HandleFulfillmentUpdated},
	}

	logger.Info("starting inbox worker", "brokers", cfg.Kafka.Brokers)

	var wg sync.WaitGroup
	for _, sub := range subscriptions {
		consumer := messaging.NewConsumer(cfg.Kafka.Brokers, sub.topic, consumerGroup)
		defer func() { _ = consumer.Close() }()

		wg.Add(1)
		go func(topic string, handle func(ctx context.Context, payload []byte) error) {
			defer wg.Done()
			if err := consumer.Consume(consumeCtx, handle); err != nil && consumeCtx.Err() == nil {
				logger.Error("consumer error", "topic", topic, "error", err)
				cancel()
			}
		}(sub.topic, sub.handle)
	}

	wg.Wait()
	logger.Info("consumers stopped")
}
