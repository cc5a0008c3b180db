package openai_tools

import (
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
)

const (
	fallbackEncoding = "cl100k_base"
	tokensPerMessage = 3
	tokensPerName    = 1
	tokensPerReply   = 3
)

// CountToken estimates the prompt size of messages for model. Models tiktoken does
// not know are counted with the cl100k_base encoding.
func CountToken(messages []openai.ChatCompletionMessage, model string) (int, error) {
	tkm, err := encodingFor(model)
	if err != nil {
		return 0, err
	}

	numTokens := 0
	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		if message.Name != "" {
			numTokens += len(tkm.Encode(message.Name, nil, nil))
			numTokens += tokensPerName
		}
	}
	return numTokens + tokensPerReply, nil
}

func encodingFor(model string) (*tiktoken.Tiktoken, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err == nil {
		return tkm, nil
	}
	tkm, err = tiktoken.GetEncoding(fallbackEncoding)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get encoding %s", fallbackEncoding)
	}
	return tkm, nil
}
