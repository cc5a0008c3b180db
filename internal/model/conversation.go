package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultConversationName = "New Conversation"

// Conversation is a named, soft-deletable thread of messages owned by one user.
// Messages are append-only and kept in chronological order.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"chats"`
	CreatedAt time.Time `json:"createdAt"`
	IsDeleted bool      `json:"isDeleted"`
}

func NewConversation(name string, now time.Time) Conversation {
	if name == "" {
		name = DefaultConversationName
	}
	return Conversation{
		ID:        uuid.New(),
		Name:      name,
		Messages:  make([]Message, 0, 2),
		CreatedAt: now,
	}
}

func (c *Conversation) AppendMessage(msg Message) {
	c.Messages = append(c.Messages, msg)
}

func (c *Conversation) Rename(name string) {
	c.Name = name
}

// IsFirstExchange reports whether the conversation holds exactly one user turn
// followed by one assistant turn.
func (c *Conversation) IsFirstExchange() bool {
	return len(c.Messages) == 2
}

func (c Conversation) Clone() Conversation {
	clone := c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return clone
}
