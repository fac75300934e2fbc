package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/hntran/reelist/adapters/event"
	"github.com/hntran/reelist/adapters/persistence"
	"github.com/hntran/reelist/internal/config"
	"github.com/hntran/reelist/internal/domain/stats"
	"github.com/hntran/reelist/pkg/logger"
)

func main() {
	fmt.Println("Starting Reelist Activity Worker...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Postgres: %v", err)
	}
	defer dbPool.Close()

	statsRepo := persistence.NewPostgresStatsRepo(dbPool, appLogger)

	listConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicListEvents,
		GroupID:  "activity-log-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer listConsumer.Close()

	reviewConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicReviewEvents,
		GroupID:  "activity-log-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reviewConsumer.Close()

	ctx := context.Background()

	go consumeListEvents(ctx, listConsumer, statsRepo)
	consumeReviewEvents(ctx, reviewConsumer, statsRepo)
}

func consumeListEvents(ctx context.Context, consumer *kafka.Reader, repo stats.Repository) {
	log.Printf("Worker listening on topic '%s'...", event.TopicListEvents)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			log.Printf("ERROR: Failed to read message from Kafka: %v", err)
			continue
		}

		var payload event.ListEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			log.Printf("ERROR: Failed to unmarshal list event: %v. Skipping.", err)
			commitMessage(consumer, msg)
			continue
		}

		err = repo.RecordActivity(ctx, payload.OwnerID, payload.EventType, payload.OccurredAt)
		if err != nil {
			log.Printf("ERROR: Failed to record activity for owner %s: %v", payload.OwnerID, err)
			continue
		}

		commitMessage(consumer, msg)
	}
}

func consumeReviewEvents(ctx context.Context, consumer *kafka.Reader, repo stats.Repository) {
	log.Printf("Worker listening on topic '%s'...", event.TopicReviewEvents)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			log.Printf("ERROR: Failed to read message from Kafka: %v", err)
			continue
		}

		var payload event.ReviewEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			log.Printf("ERROR: Failed to unmarshal review event: %v. Skipping.", err)
			commitMessage(consumer, msg)
			continue
		}

		err = repo.RecordActivity(ctx, payload.UserID, payload.EventType, payload.OccurredAt)
		if err != nil {
			log.Printf("ERROR: Failed to record activity for user %s: %v", payload.UserID, err)
			continue
		}

		commitMessage(consumer, msg)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Printf("ERROR: Failed to commit message: %v", err)
	}
}
