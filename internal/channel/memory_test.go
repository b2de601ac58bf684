package channel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/student-roster/internal/channel"
	"github.com/msomdec/student-roster/internal/domain"
)

var (
	_ channel.Layer = (*channel.MemoryLayer)(nil)
	_ channel.Layer = (*channel.KafkaLayer)(nil)
)

func receive(t *testing.T, ch <-chan domain.Event) domain.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before an event arrived")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return domain.Event{}
}

func TestMemoryLayer_FanOut(t *testing.T) {
	l := channel.NewMemoryLayer(4)
	defer l.Close()

	a, leaveA := l.Subscribe(domain.GroupStudents)
	defer leaveA()
	b, leaveB := l.Subscribe(domain.GroupStudents)
	defer leaveB()

	err := l.Publish(context.Background(), domain.Event{Type: domain.EventStudentCreated, Group: domain.GroupStudents})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, ch := range []<-chan domain.Event{a, b} {
		e := receive(t, ch)
		if e.Type != domain.EventStudentCreated {
			t.Fatalf("expected %s, got %s", domain.EventStudentCreated, e.Type)
		}
		if e.ID == "" {
			t.Fatal("expected event ID to be stamped")
		}
		if e.SentAt.IsZero() {
			t.Fatal("expected SentAt to be stamped")
		}
	}
}

func TestMemoryLayer_GroupsAreIsolated(t *testing.T) {
	l := channel.NewMemoryLayer(4)
	defer l.Close()

	other, leave := l.Subscribe("other")
	defer leave()

	if err := l.Publish(context.Background(), domain.Event{Type: "x", Group: domain.GroupStudents}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case e := <-other:
		t.Fatalf("unexpected event in other group: %+v", e)
	default:
	}
}

func TestMemoryLayer_LeaveClosesChannel(t *testing.T) {
	l := channel.NewMemoryLayer(1)
	defer l.Close()

	ch, leave := l.Subscribe(domain.GroupStudents)
	if got := l.Subscribers(domain.GroupStudents); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	leave()
	leave() // second call is a no-op

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after leave")
	}
	if got := l.Subscribers(domain.GroupStudents); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
}

func TestMemoryLayer_SlowSubscriberDoesNotBlock(t *testing.T) {
	l := channel.NewMemoryLayer(1)
	defer l.Close()

	ch, leave := l.Subscribe(domain.GroupStudents)
	defer leave()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := l.Publish(ctx, domain.Event{Type: "x", Group: domain.GroupStudents}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}

	receive(t, ch)
	select {
	case <-ch:
		t.Fatal("expected overflow events to be dropped")
	default:
	}
}

func TestMemoryLayer_PublishWithoutGroup(t *testing.T) {
	l := channel.NewMemoryLayer(1)
	defer l.Close()

	err := l.Publish(context.Background(), domain.Event{Type: "x"})
	if !errors.Is(err, channel.ErrNoGroup) {
		t.Fatalf("expected ErrNoGroup, got %v", err)
	}
}

func TestMemoryLayer_Close(t *testing.T) {
	l := channel.NewMemoryLayer(1)
	ch, _ := l.Subscribe(domain.GroupStudents)

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected subscriber channel to be closed")
	}

	err := l.Publish(context.Background(), domain.Event{Type: "x", Group: domain.GroupStudents})
	if !errors.Is(err, channel.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	late, _ := l.Subscribe(domain.GroupStudents)
	if _, ok := <-late; ok {
		t.Fatal("expected subscription after Close to be closed")
	}
}
