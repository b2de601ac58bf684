// Package channel is the pub/sub layer used to push roster updates to
// connected browsers. Subscribers join a named group and receive every
// event published to it.
package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/student-roster/internal/domain"
)

const (
	BackendMemory = "memory"
	BackendKafka  = "kafka"
)

var (
	ErrClosed  = errors.New("channel layer closed")
	ErrNoGroup = errors.New("event has no group")
)

// Layer broadcasts events to group subscribers.
type Layer interface {
	Publish(ctx context.Context, event domain.Event) error
	// Subscribe joins group. The returned func leaves the group and closes
	// the channel; it is safe to call more than once.
	Subscribe(group string) (<-chan domain.Event, func())
	Close() error
}

// Config selects and configures a Layer backend.
type Config struct {
	Backend string
	Buffer  int
	Kafka   KafkaConfig
}

// New builds the Layer named by cfg.Backend.
func New(cfg Config) (Layer, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryLayer(cfg.Buffer), nil
	case BackendKafka:
		cfg.Kafka.Buffer = cfg.Buffer
		return NewKafkaLayer(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unknown channel backend %q", cfg.Backend)
	}
}

// NewEvent builds an event for group with a fresh ID and the current time.
func NewEvent(group, eventType string, payload []byte) domain.Event {
	return domain.Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Group:   group,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	}
}

func stamp(e *domain.Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now().UTC()
	}
}
