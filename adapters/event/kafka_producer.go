package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hntran/reelist/internal/config"
)

const (
	TopicListEvents   = "list.events"
	TopicReviewEvents = "review.events"
)

const (
	ListEventTypeSaved   = "saved"
	ListEventTypeDeleted = "deleted"

	ReviewEventTypeUpserted = "upserted"
	ReviewEventTypeDeleted  = "deleted"
)

type ListEventPayload struct {
	EventType    string    `json:"event_type"`
	OwnerID      string    `json:"owner_id"`
	CollectionID string    `json:"collection_id"`
	ItemCount    int       `json:"item_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type ReviewEventPayload struct {
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	ItemID     int       `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type KafkaProducerClient struct {
	ListEventsWriter   *kafka.Writer
	ReviewEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	listWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicListEvents,
		Balancer: &kafka.LeastBytes{},
	}

	reviewWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicReviewEvents,
		Balancer: &kafka.LeastBytes{},
	}

	fmt.Println("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{
		ListEventsWriter:   listWriter,
		ReviewEventsWriter: reviewWriter,
	}, nil
}

func (c *KafkaProducerClient) PublishListEvent(ctx context.Context, payload ListEventPayload) error {
	return publish(ctx, c.ListEventsWriter, payload.OwnerID, payload)
}

func (c *KafkaProducerClient) PublishReviewEvent(ctx context.Context, payload ReviewEventPayload) error {
	return publish(ctx, c.ReviewEventsWriter, payload.UserID, payload)
}

func publish(ctx context.Context, writer *kafka.Writer, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.ListEventsWriter != nil {
		c.ListEventsWriter.Close()
	}
	if c.ReviewEventsWriter != nil {
		c.ReviewEventsWriter.Close()
	}
	fmt.Println("Closed Kafka Producers")
}
