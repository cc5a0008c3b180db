package model

import (
	"time"
)

// MigrateLegacyMessages moves the flat single-thread history of a user into one
// conversation named nameFor(first user turn). It is a no-op when the user already
// has conversations or has no legacy history, and reports whether u changed.
func MigrateLegacyMessages(u *User, nameFor func(firstUserText string) string, now time.Time) bool {
	if len(u.LegacyMessages) == 0 || len(u.Conversations) > 0 {
		return false
	}

	var firstUserText string
	for _, msg := range u.LegacyMessages {
		if msg.Role == MessageRoleUser {
			firstUserText = msg.Content
			break
		}
	}

	createdAt := now
	if ts := u.LegacyMessages[0].Timestamp; !ts.IsZero() {
		createdAt = ts
	}
	conv := NewConversation(nameFor(firstUserText), createdAt)
	conv.Messages = append(conv.Messages, u.LegacyMessages...)
	u.AddConversation(conv)
	u.LegacyMessages = nil
	return true
}
