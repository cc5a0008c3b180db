package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iamvkosarev/ai-chat-web/config"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	maxConversationNameLength = 50
	fallbackNameLength        = 30
	fallbackNameEllipsis      = "..."
)

type NamingUsecaseDeps struct {
	Generator Generator
}

// NamingUsecase titles a conversation after its first exchange.
type NamingUsecase struct {
	NamingUsecaseDeps
	placeholder string
	timeout     time.Duration
}

func NewNamingUsecase(deps NamingUsecaseDeps, aiCfg config.AI, chatCfg config.Chat) *NamingUsecase {
	placeholder := chatCfg.PlaceholderName
	if placeholder == "" {
		placeholder = model.DefaultConversationName
	}
	return &NamingUsecase{
		NamingUsecaseDeps: deps,
		placeholder:       placeholder,
		timeout:           aiCfg.NamingTimeout,
	}
}

// DeriveName never fails: any provider problem yields FallbackName(userText).
func (n *NamingUsecase) DeriveName(ctx context.Context, userText, assistantText string) string {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	title, err := n.Generator.Generate(ctx, buildNamingPrompt(userText, assistantText))
	if err != nil {
		log.Warn().Err(err).Msg("failed to generate conversation name")
		return FallbackName(userText, n.placeholder)
	}
	title = cleanTitle(title)
	if title == "" {
		return FallbackName(userText, n.placeholder)
	}
	return title
}

// FallbackName is the first fallbackNameLength runes of userText with an ellipsis
// when truncated, or placeholder for blank input.
func FallbackName(userText, placeholder string) string {
	text := strings.TrimSpace(userText)
	if text == "" {
		return placeholder
	}
	runes := []rune(text)
	if len(runes) > fallbackNameLength {
		return string(runes[:fallbackNameLength]) + fallbackNameEllipsis
	}
	return text
}

func cleanTitle(title string) string {
	title = strings.NewReplacer(`"`, "", "'", "").Replace(title)
	title = strings.TrimSpace(title)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	runes := []rune(title)
	if len(runes) > maxConversationNameLength {
		title = strings.TrimSpace(string(runes[:maxConversationNameLength]))
	}
	return title
}
