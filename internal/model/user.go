package model

import (
	"github.com/google/uuid"
)

// User is the persisted document: the account plus every conversation it owns.
// Conversations are kept in creation order.
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	Conversations []Conversation
	// LegacyMessages is the flat history of the single-thread design. It is folded
	// into a conversation by MigrateLegacyMessages and is empty afterwards.
	LegacyMessages []Message
}

// FindConversation returns the active conversation with the given id.
func (u *User) FindConversation(conversationID uuid.UUID) (*Conversation, bool) {
	conv, ok := u.LookupConversation(conversationID)
	if !ok || conv.IsDeleted {
		return nil, false
	}
	return conv, true
}

// LookupConversation returns the conversation with the given id, deleted or not.
func (u *User) LookupConversation(conversationID uuid.UUID) (*Conversation, bool) {
	for i := range u.Conversations {
		if u.Conversations[i].ID == conversationID {
			return &u.Conversations[i], true
		}
	}
	return nil, false
}

// AddConversation appends conv and returns a pointer to the stored copy. The pointer
// is valid until the next AddConversation.
func (u *User) AddConversation(conv Conversation) *Conversation {
	u.Conversations = append(u.Conversations, conv)
	return &u.Conversations[len(u.Conversations)-1]
}

func (u *User) ActiveConversations() []Conversation {
	conversations := make([]Conversation, 0, len(u.Conversations))
	for _, conv := range u.Conversations {
		if conv.IsDeleted {
			continue
		}
		conversations = append(conversations, conv.Clone())
	}
	return conversations
}

// DeleteConversation soft-deletes one conversation and reports whether anything changed.
func (u *User) DeleteConversation(conversationID uuid.UUID) bool {
	conv, ok := u.FindConversation(conversationID)
	if !ok {
		return false
	}
	conv.IsDeleted = true
	return true
}

func (u *User) DeleteAllConversations() {
	for i := range u.Conversations {
		u.Conversations[i].IsDeleted = true
	}
	u.LegacyMessages = nil
}

func (u User) Clone() User {
	clone := u
	if u.Conversations != nil {
		clone.Conversations = make([]Conversation, len(u.Conversations))
		for i, conv := range u.Conversations {
			clone.Conversations[i] = conv.Clone()
		}
	}
	if u.LegacyMessages != nil {
		clone.LegacyMessages = make([]Message, len(u.LegacyMessages))
		copy(clone.LegacyMessages, u.LegacyMessages)
	}
	return clone
}
