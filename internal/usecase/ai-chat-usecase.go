package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/config"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ConversationNamer interface {
	DeriveName(ctx context.Context, userText, assistantText string) string
}

type AiChatUsecaseDeps struct {
	UserStorage UserStorage
	Generator   Generator
	Namer       ConversationNamer
	// Now defaults to time.Now.
	Now func() time.Time
}

type AiChatUsecase struct {
	AiChatUsecaseDeps
	cfg config.Chat
}

// TurnResult is the state of a conversation after a completed turn.
type TurnResult struct {
	ConversationID   uuid.UUID
	ConversationName string
	Messages         []model.Message
}

func NewAiChatUsecase(deps AiChatUsecaseDeps, cfg config.Chat) *AiChatUsecase {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.PlaceholderName == "" {
		cfg.PlaceholderName = model.DefaultConversationName
	}
	return &AiChatUsecase{
		AiChatUsecaseDeps: deps,
		cfg:               cfg,
	}
}

// ContinueConversation appends text to the conversation identified by
// conversationID, or to a new one when it is empty or does not name an active
// conversation, and appends the generated reply. The conversation is renamed once,
// right after its first exchange.
func (a *AiChatUsecase) ContinueConversation(
	ctx context.Context, userID uuid.UUID, text string, conversationID string,
) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return TurnResult{}, err
	}

	conv, err := a.resolveConversation(&user, conversationID)
	if err != nil {
		return TurnResult{}, err
	}
	conv.AppendMessage(model.NewMessage(model.MessageRoleUser, text, a.Now()))
	convID := conv.ID

	answer, err := a.Generator.Generate(ctx, BuildConversationPrompt(conv.Messages))
	if err != nil {
		genErr := &GenerationError{ConversationID: convID, Err: err}
		if saveErr := a.UserStorage.SaveUser(context.WithoutCancel(ctx), user); saveErr != nil {
			log.Error().Err(saveErr).
				Str("user_id", userID.String()).
				Str("conversation_id", convID.String()).
				Msg("failed to persist user turn after generation failure")
		} else {
			genErr.UserTurnPersisted = true
		}
		return TurnResult{}, genErr
	}

	conv.AppendMessage(model.NewMessage(model.MessageRoleAssistant, answer, a.Now()))
	if conv.IsFirstExchange() {
		conv.Rename(a.Namer.DeriveName(ctx, text, answer))
	}
	result := TurnResult{
		ConversationID:   conv.ID,
		ConversationName: conv.Name,
		Messages:         conv.Clone().Messages,
	}

	if err = a.UserStorage.SaveUser(context.WithoutCancel(ctx), user); err != nil {
		return TurnResult{}, errors.Wrapf(err, "failed to save conversation %s", convID)
	}
	log.Debug().
		Str("user_id", userID.String()).
		Str("conversation_id", convID.String()).
		Int("messages", len(result.Messages)).
		Msg("conversation continued")
	return result, nil
}

// ListConversations returns the active conversations in creation order.
func (a *AiChatUsecase) ListConversations(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ActiveConversations(), nil
}

// GetConversation looks a conversation up by id whether or not it is deleted.
func (a *AiChatUsecase) GetConversation(
	ctx context.Context, userID uuid.UUID, conversationID uuid.UUID,
) (model.Conversation, error) {
	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return model.Conversation{}, err
	}
	conv, ok := user.LookupConversation(conversationID)
	if !ok {
		return model.Conversation{}, model.ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// DeleteConversation soft-deletes one conversation. Unknown or already deleted
// ids succeed without a write.
func (a *AiChatUsecase) DeleteConversation(ctx context.Context, userID uuid.UUID, conversationID string) error {
	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	convID, err := uuid.Parse(conversationID)
	if err != nil {
		return nil
	}
	if !user.DeleteConversation(convID) {
		return nil
	}
	if err = a.UserStorage.SaveUser(ctx, user); err != nil {
		return errors.Wrapf(err, "failed to delete conversation %s", convID)
	}
	return nil
}

// DeleteAllConversations soft-deletes every conversation and drops the legacy
// history in a single write.
func (a *AiChatUsecase) DeleteAllConversations(ctx context.Context, userID uuid.UUID) error {
	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	user.DeleteAllConversations()
	if err = a.UserStorage.SaveUser(ctx, user); err != nil {
		return errors.Wrap(err, "failed to delete conversations")
	}
	return nil
}

// loadUser fetches the user and persists the legacy migration right away so the
// migrated conversation keeps a stable id.
func (a *AiChatUsecase) loadUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.UserStorage.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, errors.Wrapf(err, "failed to get user %s", userID)
	}

	migrated := model.MigrateLegacyMessages(
		&user, func(firstUserText string) string {
			return FallbackName(firstUserText, a.cfg.PlaceholderName)
		}, a.Now(),
	)
	if migrated {
		if err = a.UserStorage.SaveUser(ctx, user); err != nil {
			return model.User{}, errors.Wrap(err, "failed to save migrated history")
		}
		log.Info().Str("user_id", userID.String()).Msg("legacy history migrated to a conversation")
	}
	return user, nil
}

func (a *AiChatUsecase) resolveConversation(user *model.User, conversationID string) (*model.Conversation, error) {
	if conversationID == "" {
		return user.AddConversation(model.NewConversation(a.cfg.PlaceholderName, a.Now())), nil
	}

	convID, err := uuid.Parse(conversationID)
	if err == nil {
		if conv, ok := user.FindConversation(convID); ok {
			return conv, nil
		}
	}
	if a.cfg.StrictConversationIDs {
		return nil, model.ErrConversationNotFound
	}
	log.Info().
		Str("user_id", user.ID.String()).
		Str("conversation_id", conversationID).
		Msg("conversation not found, starting a new one")
	return user.AddConversation(model.NewConversation(a.cfg.PlaceholderName, a.Now())), nil
}
