package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who a transcript message belongs to.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Messages are immutable once appended;
// the transcript only ever grows, except for a full session reset.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func newMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// State is the session's position in its request lifecycle.
type State string

const (
	// StateEmpty: no transcript yet (nothing successfully analyzed).
	StateEmpty State = "empty"
	// StateAutoPending: transcript was reset and the automatic query is
	// in flight.
	StateAutoPending State = "auto_pending"
	// StateIdle: no request pending, ready for user input.
	StateIdle State = "idle"
	// StateUserPending: at least one user-submitted query is in flight.
	StateUserPending State = "user_pending"
)

// Snapshot is a point-in-time copy of the session for consumers.
type Snapshot struct {
	State     State     `json:"state"`
	Messages  []Message `json:"messages"`
	LastError string    `json:"lastError,omitempty"`
}

// Update is pushed on the session's update channel after every visible
// state change.
type Update struct {
	Type string
	Data interface{}
}
