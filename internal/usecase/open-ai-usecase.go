package usecase

import (
	"context"
	"strings"

	"github.com/iamvkosarev/ai-chat-web/config"
	openai_tools "github.com/iamvkosarev/ai-chat-web/pkg/openai-tools"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAIUsecase generates completions through any OpenAI-compatible endpoint.
type OpenAIUsecase struct {
	cfg    config.AI
	client *openai.Client
}

func NewOpenAIUsecase(cfg config.AI) *OpenAIUsecase {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &OpenAIUsecase{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Generate sends prompt as a single user message and returns the reply text.
func (gpt *OpenAIUsecase) Generate(ctx context.Context, prompt string) (string, error) {
	if gpt.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gpt.cfg.RequestTimeout)
		defer cancel()
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	}
	gpt.logPromptSize(messages)

	req := openai.ChatCompletionRequest{
		Model:       gpt.cfg.Model,
		Temperature: gpt.cfg.Temperature,
		MaxTokens:   gpt.cfg.MaxTokens,
		N:           1,
		Messages:    messages,
	}
	resp, err := gpt.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}

// logPromptSize is a no-op unless a context window is configured.
func (gpt *OpenAIUsecase) logPromptSize(messages []openai.ChatCompletionMessage) {
	if gpt.cfg.ContextWindowTokens <= 0 {
		return
	}
	tokenCount, err := openai_tools.CountToken(messages, gpt.cfg.Model)
	if err != nil {
		log.Debug().Err(err).Msg("count token error")
		return
	}
	event := log.Debug()
	if tokenCount > gpt.cfg.ContextWindowTokens {
		event = log.Warn()
	}
	event.Int("context_window", gpt.cfg.ContextWindowTokens).Int("prompt_tokens", tokenCount).Str("model", gpt.cfg.Model).Msg("prompt prepared")
}
