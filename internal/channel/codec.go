package channel

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/msomdec/student-roster/internal/domain"
)

// Encode serializes an event for the wire.
func Encode(e domain.Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

// Decode parses a wire event. Events without a type or group are rejected.
func Decode(data []byte) (domain.Event, error) {
	var e domain.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" || e.Group == "" {
		return domain.Event{}, fmt.Errorf("%w: event requires type and group", domain.ErrInvalidInput)
	}
	return e, nil
}
