package key_value

import (
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
)

type messageInternal struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type conversationInternal struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Messages  []messageInternal `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	IsDeleted bool              `json:"is_deleted"`
}

func toMessagesInternal(messages []model.Message) []messageInternal {
	result := make([]messageInternal, 0, len(messages))
	for _, msg := range messages {
		result = append(
			result, messageInternal{
				ID:        msg.ID.String(),
				Role:      string(msg.Role),
				Content:   msg.Content,
				Timestamp: msg.Timestamp,
			},
		)
	}
	return result
}

func fromMessagesInternal(messages []messageInternal) ([]model.Message, error) {
	result := make([]model.Message, 0, len(messages))
	for _, msg := range messages {
		msgID, err := uuid.Parse(msg.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse message id %s", msg.ID)
		}
		role, err := model.ParseMessageRole(msg.Role)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse role of message %s", msg.ID)
		}
		result = append(
			result, model.Message{
				ID:        msgID,
				Role:      role,
				Content:   msg.Content,
				Timestamp: msg.Timestamp,
			},
		)
	}
	return result, nil
}

func toConversationsInternal(conversations []model.Conversation) []conversationInternal {
	result := make([]conversationInternal, 0, len(conversations))
	for _, conv := range conversations {
		result = append(
			result, conversationInternal{
				ID:        conv.ID.String(),
				Name:      conv.Name,
				Messages:  toMessagesInternal(conv.Messages),
				CreatedAt: conv.CreatedAt,
				IsDeleted: conv.IsDeleted,
			},
		)
	}
	return result
}

func fromConversationsInternal(conversations []conversationInternal) ([]model.Conversation, error) {
	result := make([]model.Conversation, 0, len(conversations))
	for _, convInt := range conversations {
		convID, err := uuid.Parse(convInt.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse conversation id %s", convInt.ID)
		}
		messages, err := fromMessagesInternal(convInt.Messages)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse conversation %s", convInt.ID)
		}
		result = append(
			result, model.Conversation{
				ID:        convID,
				Name:      convInt.Name,
				Messages:  messages,
				CreatedAt: convInt.CreatedAt,
				IsDeleted: convInt.IsDeleted,
			},
		)
	}
	return result, nil
}
