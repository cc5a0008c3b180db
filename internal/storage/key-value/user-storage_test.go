package key_value

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDocumentKeepsHistoryAndDeletedFlag(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	user := model.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		LegacyMessages: []model.Message{
			model.NewMessage(model.MessageRoleUser, "legacy", start),
		},
	}
	first := user.AddConversation(model.NewConversation("first", start))
	first.AppendMessage(model.NewMessage(model.MessageRoleUser, "m1", start))
	first.AppendMessage(model.NewMessage(model.MessageRoleAssistant, "m2", start.Add(time.Second)))
	first.AppendMessage(model.NewMessage(model.MessageRoleUser, "m3", start.Add(2*time.Second)))
	second := user.AddConversation(model.NewConversation("second", start.Add(time.Hour)))
	second.IsDeleted = true

	raw, err := json.Marshal(toUserInternal(user))
	require.NoError(t, err)
	var decoded userInternal
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := fromUserInternal(decoded)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestFromUserInternalRejectsBadIDs(t *testing.T) {
	_, err := fromUserInternal(userInternal{UserID: "not-a-uuid"})
	assert.Error(t, err)

	_, err = fromUserInternal(
		userInternal{
			UserID:        uuid.NewString(),
			Conversations: []conversationInternal{{ID: "broken"}},
		},
	)
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("0b0c8a5e-8f4e-4a57-9d1c-1b9b0d1f4a11")
	assert.Equal(t, "user_0b0c8a5e-8f4e-4a57-9d1c-1b9b0d1f4a11", getUserIDKey(id))
	assert.Equal(t, "email_ada@example.com", getUserEmailKey(" Ada@Example.com "))
}

func TestFromUserInternalParsesStoredRoles(t *testing.T) {
	userInt := userInternal{
		UserID: uuid.NewString(),
		Conversations: []conversationInternal{
			{
				ID: uuid.NewString(),
				Messages: []messageInternal{
					{ID: uuid.NewString(), Role: "model", Content: "hi"},
				},
			},
		},
	}
	got, err := fromUserInternal(userInt)
	require.NoError(t, err)
	require.Len(t, got.Conversations[0].Messages, 1)
	assert.Equal(t, model.MessageRoleAssistant, got.Conversations[0].Messages[0].Role)

	userInt.Conversations[0].Messages[0].Role = "system"
	_, err = fromUserInternal(userInt)
	assert.ErrorIs(t, err, model.ErrUnknownMessageRole)
}

func newTestStorage(t *testing.T, hooks ...redis.Hook) (*UserStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	for _, hook := range hooks {
		rdb.AddHook(hook)
	}
	return NewUserStorage(rdb), mr
}

func newStoredUser(email string) model.User {
	return model.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        email,
		PasswordHash: "hash",
	}
}

func TestUserStorageCreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t)
	user := newStoredUser("ada@example.com")

	require.NoError(t, storage.CreateUser(ctx, user))
	assert.True(t, mr.Exists("email_ada@example.com"))
	assert.True(t, mr.Exists(getUserIDKey(user.ID)))

	got, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ada", got.Name)

	got, err = storage.GetUserByEmail(ctx, " ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserStorageCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t)
	first := newStoredUser("ada@example.com")
	require.NoError(t, storage.CreateUser(ctx, first))

	second := newStoredUser("Ada@Example.com")
	err := storage.CreateUser(ctx, second)
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	assert.False(t, mr.Exists(getUserIDKey(second.ID)))

	owner, err := mr.Get("email_ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), owner)
}

func TestUserStorageMissingUser(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t)

	_, err := storage.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	_, err = storage.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	user := newStoredUser("ada@example.com")
	err = storage.SaveUser(ctx, user)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.False(t, mr.Exists(getUserIDKey(user.ID)))
}

func TestUserStorageSaveKeepsConversationOrder(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	user := newStoredUser("ada@example.com")
	require.NoError(t, storage.CreateUser(ctx, user))

	first := user.AddConversation(model.NewConversation("first", start))
	first.AppendMessage(model.NewMessage(model.MessageRoleUser, "q", start))
	first.AppendMessage(model.NewMessage(model.MessageRoleAssistant, "a", start.Add(time.Second)))
	second := user.AddConversation(model.NewConversation("second", start.Add(time.Hour)))
	second.IsDeleted = true
	require.NoError(t, storage.SaveUser(ctx, user))

	got, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Conversations, 2)
	assert.Equal(t, "first", got.Conversations[0].Name)
	assert.Equal(t, user.Conversations[0].Messages, got.Conversations[0].Messages)
	assert.Equal(t, "second", got.Conversations[1].Name)
	assert.True(t, got.Conversations[1].IsDeleted)
	assert.Empty(t, got.Conversations[1].Messages)
}

// failingSetHook fails plain SET commands and lets everything else through.
type failingSetHook struct{}

func (failingSetHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (failingSetHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "set" {
			err := errors.New("write refused")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (failingSetHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestUserStorageCreateReleasesEmailOnFailure(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t, failingSetHook{})
	user := newStoredUser("ada@example.com")

	err := storage.CreateUser(ctx, user)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrUserAlreadyExists)
	assert.False(t, mr.Exists("email_ada@example.com"))
	assert.False(t, mr.Exists(getUserIDKey(user.ID)))
}
