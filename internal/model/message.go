package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is one turn of a conversation. It is never mutated after creation.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewMessage(role MessageRole, content string, now time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
}
