package usecase

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrEmptyMessage       = errors.New("message is empty")
	ErrMissingCredentials = errors.New("name, email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmptyCompletion    = errors.New("provider returned an empty completion")
)

// GenerationError reports a failed provider call for a conversation turn. When
// UserTurnPersisted is set the user message is already part of ConversationID.
type GenerationError struct {
	ConversationID    uuid.UUID
	UserTurnPersisted bool
	Err               error
}

func (e *GenerationError) Error() string {
	return "failed to generate response: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
