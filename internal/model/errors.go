package model

import "github.com/pkg/errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUnknownMessageRole   = errors.New("unknown message role")
)
