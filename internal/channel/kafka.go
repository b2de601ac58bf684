package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/student-roster/internal/domain"
	kafka "github.com/segmentio/kafka-go"
)

// KafkaConfig configures the Kafka-backed Layer.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	// GroupID is the consumer group. Empty means a unique group per
	// process, so every instance sees every event.
	GroupID string
	Buffer  int
	// RetryDelay is the pause after a failed read before trying again.
	// Defaults to one second.
	RetryDelay time.Duration
}

const defaultRetryDelay = time.Second

// messageReader is the part of kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Validate checks that the required fields are set.
func (c KafkaConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka brokers are required")
	}
	if c.Topic == "" {
		return errors.New("kafka topic is required")
	}
	return nil
}

// KafkaLayer publishes events to a Kafka topic and fans consumed messages
// out to local subscribers, so browsers attached to any instance are
// notified.
type KafkaLayer struct {
	writer *kafka.Writer
	reader messageReader
	local  *MemoryLayer

	retryDelay time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewKafkaLayer connects the writer and starts the consumer goroutine.
func NewKafkaLayer(cfg KafkaConfig) (*KafkaLayer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "student-roster-" + uuid.NewString()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.LastOffset,
	})

	l := newKafkaLayer(writer, reader, cfg)
	slog.Info("kafka channel layer started", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)
	return l, nil
}

func newKafkaLayer(writer *kafka.Writer, reader messageReader, cfg KafkaConfig) *KafkaLayer {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &KafkaLayer{
		writer:     writer,
		reader:     reader,
		local:      NewMemoryLayer(cfg.Buffer),
		retryDelay: cfg.RetryDelay,
		cancel:     cancel,
	}

	l.wg.Add(1)
	go l.consume(ctx)
	return l
}

func (l *KafkaLayer) Publish(ctx context.Context, event domain.Event) error {
	if event.Group == "" {
		return ErrNoGroup
	}
	stamp(&event)

	data, err := Encode(event)
	if err != nil {
		return err
	}
	if err := l.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Group),
		Value: data,
	}); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (l *KafkaLayer) Subscribe(group string) (<-chan domain.Event, func()) {
	return l.local.Subscribe(group)
}

func (l *KafkaLayer) consume(ctx context.Context) {
	defer l.wg.Done()

	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("read kafka message", "error", err, "retry_in", l.retryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.retryDelay):
			}
			continue
		}

		event, err := Decode(msg.Value)
		if err != nil {
			slog.Warn("skipping malformed kafka message", "offset", msg.Offset, "error", err)
			continue
		}
		if err := l.local.Publish(ctx, event); err != nil && ctx.Err() == nil {
			slog.Error("fan out kafka event", "error", err)
		}
	}
}

// Close stops the consumer and releases the Kafka connections.
func (l *KafkaLayer) Close() error {
	var errs []error
	l.once.Do(func() {
		l.cancel()
		if err := l.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close reader: %w", err))
		}
		if err := l.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer: %w", err))
		}
		l.wg.Wait()
		l.local.Close()
	})
	return errors.Join(errs...)
}
