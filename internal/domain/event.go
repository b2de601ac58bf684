package domain

import (
	"encoding/json"
	"time"
)

const (
	GroupStudents = "students"

	EventStudentCreated = "student.created"
	EventStudentDeleted = "student.deleted"
)

// Event is a message broadcast through the channel layer to every
// subscriber of Group.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Group   string          `json:"group"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sentAt"`
}
