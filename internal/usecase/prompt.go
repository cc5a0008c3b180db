package usecase

import (
	"strings"

	"github.com/iamvkosarev/ai-chat-web/internal/model"
)

// BuildConversationPrompt renders the whole history as role-labelled blocks and
// leaves an open assistant turn at the end.
func BuildConversationPrompt(messages []model.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(msg.Role.Label())
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString(model.MessageRoleAssistant.Label())
	sb.WriteString(":")
	return sb.String()
}

func buildNamingPrompt(userText, assistantText string) string {
	return `Based on this conversation, generate a short, descriptive title (2-4 words) for the chat:

User: ` + userText + `
Assistant: ` + assistantText + `

Generate a title that captures the main topic or intent. Examples:
- "hi" -> "Friendly Greeting"
- "help with JavaScript syntax" -> "JavaScript Help"
- "explain quantum physics" -> "Quantum Physics"
- "how to cook pasta" -> "Cooking Tips"
- "what's the weather" -> "Weather Query"

Title:`
}
