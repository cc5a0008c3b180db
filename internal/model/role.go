package model

import "strings"

type MessageRole string

const (
	MessageRoleUser      = MessageRole("user")
	MessageRoleAssistant = MessageRole("assistant")
)

// ParseMessageRole accepts the provider's "model" alias for the assistant.
func ParseMessageRole(s string) (MessageRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return MessageRoleUser, nil
	case "assistant", "model":
		return MessageRoleAssistant, nil
	default:
		return "", ErrUnknownMessageRole
	}
}

func (r MessageRole) Label() string {
	switch r {
	case MessageRoleUser:
		return "Human"
	case MessageRoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}
