package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"example.com/fittrack/internal/domain"
)

// KafkaPublisher writes feed events to Kafka, lazily managing one writer per
// topic. It implements domain.FeedPublisher.
type KafkaPublisher struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// ActivityCreated implements domain.FeedPublisher.
func (p *KafkaPublisher) ActivityCreated(ctx context.Context, activity domain.Activity) error {
	event := ActivityCreatedEvent{
		EventID:      uuid.NewString(),
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		Title:        activity.Title,
		ActivityType: activity.ActivityType,
		DistanceKm:   activity.DistanceKm,
		DurationSec:  activity.DurationSec,
		IsPublic:     activity.IsPublic,
		CreatedAt:    activity.CreatedAt,
	}
	return p.publish(ctx, TopicActivityCreated, activity.UserID, event)
}

// PostCreated implements domain.FeedPublisher.
func (p *KafkaPublisher) PostCreated(ctx context.Context, post domain.Post) error {
	event := PostCreatedEvent{
		EventID:    uuid.NewString(),
		PostID:     post.ID,
		UserID:     post.UserID,
		ActivityID: post.ActivityID,
		CreatedAt:  post.CreatedAt,
	}
	return p.publish(ctx, TopicPostCreated, post.UserID, event)
}

// publish keys messages by user id so one user's events stay ordered.
func (p *KafkaPublisher) publish(ctx context.Context, topic string, userID int64, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	writer := p.writerForTopic(topic)
	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(userID, 10)),
		Value: body,
	})
}

func (p *KafkaPublisher) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// Nop is the publisher used when no brokers are configured.
type Nop struct{}

// ActivityCreated implements domain.FeedPublisher.
func (Nop) ActivityCreated(ctx context.Context, activity domain.Activity) error { return nil }

// PostCreated implements domain.FeedPublisher.
func (Nop) PostCreated(ctx context.Context, post domain.Post) error { return nil }
