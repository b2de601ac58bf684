package channel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/msomdec/student-roster/internal/domain"
	kafka "github.com/segmentio/kafka-go"
)

// stubReader fails the first failures reads, then serves messages until
// its context ends.
type stubReader struct {
	failures int64
	reads    atomic.Int64
	messages chan kafka.Message
}

func (r *stubReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.reads.Add(1) <= r.failures {
		return kafka.Message{}, errors.New("broker unavailable")
	}
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg := <-r.messages:
		return msg, nil
	}
}

func (r *stubReader) Close() error { return nil }

func startConsumer(t *testing.T, reader messageReader, retry time.Duration) *KafkaLayer {
	t.Helper()
	l := newKafkaLayer(&kafka.Writer{}, reader, KafkaConfig{RetryDelay: retry, Buffer: 4})
	t.Cleanup(func() {
		l.cancel()
		l.wg.Wait()
		l.local.Close()
	})
	return l
}

func TestKafkaConsume_PausesAfterReadError(t *testing.T) {
	reader := &stubReader{failures: 1 << 30, messages: make(chan kafka.Message)}
	startConsumer(t, reader, 50*time.Millisecond)

	time.Sleep(120 * time.Millisecond)

	// One immediate read plus at most one retry per delay.
	if got := reader.reads.Load(); got > 4 {
		t.Fatalf("expected paced retries, got %d reads in 120ms", got)
	}
}

func TestKafkaConsume_StopsWhileWaitingToRetry(t *testing.T) {
	reader := &stubReader{failures: 1 << 30, messages: make(chan kafka.Message)}
	l := newKafkaLayer(&kafka.Writer{}, reader, KafkaConfig{RetryDelay: time.Hour})

	done := make(chan struct{})
	go func() {
		l.cancel()
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop during retry delay")
	}
	l.local.Close()
}

func TestKafkaConsume_RecoversAndFansOut(t *testing.T) {
	reader := &stubReader{failures: 2, messages: make(chan kafka.Message, 1)}
	l := startConsumer(t, reader, time.Millisecond)

	events, leave := l.Subscribe(domain.GroupStudents)
	defer leave()

	data, err := Encode(NewEvent(domain.GroupStudents, domain.EventStudentCreated, []byte(`{"id":1}`)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	reader.messages <- kafka.Message{Value: data}

	select {
	case ev := <-events:
		if ev.Type != domain.EventStudentCreated {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event after reader recovered")
	}
}
