package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/config"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	in_memory "github.com/iamvkosarev/ai-chat-web/internal/storage/in-memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReply struct {
	text string
	err  error
}

type scriptedGenerator struct {
	mu      sync.Mutex
	prompts []string
	replies []scriptedReply
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if len(g.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply.text, reply.err
}

type countingNamer struct {
	name  string
	calls int
}

func (n *countingNamer) DeriveName(_ context.Context, _, _ string) string {
	n.calls++
	return n.name
}

type chatFixture struct {
	storage   *in_memory.UserStorage
	generator *scriptedGenerator
	namer     *countingNamer
	chat      *AiChatUsecase
	userID    uuid.UUID
}

func newChatFixture(t *testing.T, cfg config.Chat, replies ...scriptedReply) *chatFixture {
	t.Helper()
	storage := in_memory.NewUserStorage()
	user := model.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, storage.CreateUser(context.Background(), user))

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	generator := &scriptedGenerator{replies: replies}
	namer := &countingNamer{name: "Friendly Greeting"}
	chat := NewAiChatUsecase(
		AiChatUsecaseDeps{
			UserStorage: storage,
			Generator:   generator,
			Namer:       namer,
			Now: func() time.Time {
				clock = clock.Add(time.Second)
				return clock
			},
		}, cfg,
	)
	return &chatFixture{
		storage:   storage,
		generator: generator,
		namer:     namer,
		chat:      chat,
		userID:    user.ID,
	}
}

func TestContinueConversationNamesOnlyAfterFirstExchange(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, config.Chat{}, scriptedReply{text: "Hello!"}, scriptedReply{text: "Sure."})

	first, err := f.chat.ContinueConversation(ctx, f.userID, "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "Friendly Greeting", first.ConversationName)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, model.MessageRoleUser, first.Messages[0].Role)
	assert.Equal(t, "hi", first.Messages[0].Content)
	assert.Equal(t, model.MessageRoleAssistant, first.Messages[1].Role)
	assert.Equal(t, "Hello!", first.Messages[1].Content)

	second, err := f.chat.ContinueConversation(ctx, f.userID, "tell me more", first.ConversationID.String())
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, "Friendly Greeting", second.ConversationName)
	require.Len(t, second.Messages, 4)
	assert.Equal(t, 1, f.namer.calls)

	assert.Equal(t, "Human: hi\n\nAssistant:", f.generator.prompts[0])
	assert.Equal(t, "Human: hi\n\nAssistant: Hello!\n\nHuman: tell me more\n\nAssistant:", f.generator.prompts[1])

	conversations, err := f.chat.ListConversations(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Len(t, conversations[0].Messages, 4)
}

func TestContinueConversationUnknownIDStartsNewConversation(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, config.Chat{}, scriptedReply{text: "one"}, scriptedReply{text: "two"})

	unknown := uuid.New()
	res, err := f.chat.ContinueConversation(ctx, f.userID, "hi", unknown.String())
	require.NoError(t, err)
	assert.NotEqual(t, unknown, res.ConversationID)
	assert.Len(t, res.Messages, 2)

	res, err = f.chat.ContinueConversation(ctx, f.userID, "hi again", "not-a-uuid")
	require.NoError(t, err)
	assert.Len(t, res.Messages, 2)

	conversations, err := f.chat.ListConversations(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, conversations, 2)
}

func TestContinueConversationStrictRejectsUnknownAndDeleted(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, config.Chat{StrictConversationIDs: true}, scriptedReply{text: "Hello!"})

	_, err := f.chat.ContinueConversation(ctx, f.userID, "hi", uuid.NewString())
	assert.ErrorIs(t, err, model.ErrConversationNotFound)

	res, err := f.chat.ContinueConversation(ctx, f.userID, "hi", "")
	require.NoError(t, err)
	require.NoError(t, f.chat.DeleteConversation(ctx, f.userID, res.ConversationID.String()))

	_, err = f.chat.ContinueConversation(ctx, f.userID, "again", res.ConversationID.String())
	assert.ErrorIs(t, err, model.ErrConversationNotFound)
	assert.Len(t, f.generator.prompts, 1)
}

func TestContinueConversationRejectsBlankMessage(t *testing.T) {
	f := newChatFixture(t, config.Chat{})

	_, err := f.chat.ContinueConversation(context.Background(), f.userID, " \n\t", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.generator.prompts)
}

func TestContinueConversationUnknownUser(t *testing.T) {
	f := newChatFixture(t, config.Chat{})

	_, err := f.chat.ContinueConversation(context.Background(), uuid.New(), "hi", "")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	_, err = f.chat.ListConversations(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestContinueConversationGenerationFailureKeepsUserTurn(t *testing.T) {
	ctx := context.Background()
	providerErr := errors.New("provider unavailable")
	f := newChatFixture(t, config.Chat{}, scriptedReply{err: providerErr}, scriptedReply{text: "Back online."})

	_, err := f.chat.ContinueConversation(ctx, f.userID, "hi", "")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, providerErr)
	assert.True(t, genErr.UserTurnPersisted)

	stored, err := f.chat.GetConversation(ctx, f.userID, genErr.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConversationName, stored.Name)
	require.Len(t, stored.Messages, 1)
	assert.Equal(t, "hi", stored.Messages[0].Content)

	res, err := f.chat.ContinueConversation(ctx, f.userID, "are you there?", genErr.ConversationID.String())
	require.NoError(t, err)
	assert.Equal(t, genErr.ConversationID, res.ConversationID)
	assert.Len(t, res.Messages, 3)
	assert.Equal(t, model.DefaultConversationName, res.ConversationName)
	assert.Zero(t, f.namer.calls)
}

func TestDeleteConversationIsIdempotentAndKeepsHistory(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, config.Chat{}, scriptedReply{text: "Hello!"})

	res, err := f.chat.ContinueConversation(ctx, f.userID, "hi", "")
	require.NoError(t, err)

	require.NoError(t, f.chat.DeleteConversation(ctx, f.userID, res.ConversationID.String()))
	require.NoError(t, f.chat.DeleteConversation(ctx, f.userID, res.ConversationID.String()))
	require.NoError(t, f.chat.DeleteConversation(ctx, f.userID, uuid.NewString()))
	require.NoError(t, f.chat.DeleteConversation(ctx, f.userID, "garbage"))

	conversations, err := f.chat.ListConversations(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, conversations)

	stored, err := f.chat.GetConversation(ctx, f.userID, res.ConversationID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	assert.Len(t, stored.Messages, 2)

	_, err = f.chat.GetConversation(ctx, f.userID, uuid.New())
	assert.ErrorIs(t, err, model.ErrConversationNotFound)
}

func TestDeleteAllConversationsClearsLegacyHistory(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, config.Chat{}, scriptedReply{text: "a"}, scriptedReply{text: "b"})

	_, err := f.chat.ContinueConversation(ctx, f.userID, "first", "")
	require.NoError(t, err)
	_, err = f.chat.ContinueConversation(ctx, f.userID, "second", "")
	require.NoError(t, err)

	require.NoError(t, f.chat.DeleteAllConversations(ctx, f.userID))

	conversations, err := f.chat.ListConversations(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, conversations)

	user, err := f.storage.GetUser(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, user.Conversations, 2)
	assert.Empty(t, user.LegacyMessages)
}

func TestLegacyHistoryIsMigratedOnce(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, config.Chat{})

	user, err := f.storage.GetUser(ctx, f.userID)
	require.NoError(t, err)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	user.LegacyMessages = []model.Message{
		model.NewMessage(model.MessageRoleUser, "What is the Go programming language used for?", start),
		model.NewMessage(model.MessageRoleAssistant, "Servers, mostly.", start.Add(time.Second)),
	}
	require.NoError(t, f.storage.SaveUser(ctx, user))

	first, err := f.chat.ListConversations(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "What is the Go programming lan...", first[0].Name)
	assert.True(t, start.Equal(first[0].CreatedAt))
	assert.Len(t, first[0].Messages, 2)

	second, err := f.chat.ListConversations(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	stored, err := f.storage.GetUser(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, stored.LegacyMessages)
}
