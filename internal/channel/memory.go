package channel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/msomdec/student-roster/internal/domain"
)

const defaultBuffer = 16

// MemoryLayer is an in-process Layer. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type MemoryLayer struct {
	mu     sync.RWMutex
	groups map[string]map[*subscriber]struct{}
	buffer int
	closed bool
}

type subscriber struct {
	ch   chan domain.Event
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// NewMemoryLayer creates a MemoryLayer whose subscriber channels hold up
// to buffer pending events.
func NewMemoryLayer(buffer int) *MemoryLayer {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &MemoryLayer{
		groups: make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
	}
}

func (l *MemoryLayer) Publish(ctx context.Context, event domain.Event) error {
	if event.Group == "" {
		return ErrNoGroup
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp(&event)

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}

	for sub := range l.groups[event.Group] {
		select {
		case sub.ch <- event:
		default:
			slog.Warn("dropping event for slow subscriber", "group", event.Group, "type", event.Type)
		}
	}
	return nil
}

func (l *MemoryLayer) Subscribe(group string) (<-chan domain.Event, func()) {
	sub := &subscriber{ch: make(chan domain.Event, l.buffer)}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	members, ok := l.groups[group]
	if !ok {
		members = make(map[*subscriber]struct{})
		l.groups[group] = members
	}
	members[sub] = struct{}{}
	l.mu.Unlock()

	leave := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if members, ok := l.groups[group]; ok {
			delete(members, sub)
			if len(members) == 0 {
				delete(l.groups, group)
			}
		}
		sub.close()
	}
	return sub.ch, leave
}

// Subscribers reports how many subscribers are in group.
func (l *MemoryLayer) Subscribers(group string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.groups[group])
}

// Close disconnects every subscriber. Later publishes fail with ErrClosed.
func (l *MemoryLayer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	for group, members := range l.groups {
		for sub := range members {
			sub.close()
		}
		delete(l.groups, group)
	}
	return nil
}
