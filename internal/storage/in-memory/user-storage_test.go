package in_memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStorage_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	storage := NewUserStorage()
	user := model.User{ID: uuid.New(), Name: "Ada", Email: "Ada@Example.com"}

	require.NoError(t, storage.CreateUser(ctx, user))
	assert.ErrorIs(t, storage.CreateUser(ctx, model.User{ID: uuid.New(), Email: "ada@example.com"}), model.ErrUserAlreadyExists)

	got, err := storage.GetUserByEmail(ctx, " ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = storage.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	_, err = storage.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserStorage_SaveRoundTripsHistoryOrder(t *testing.T) {
	ctx := context.Background()
	storage := NewUserStorage()
	user := model.User{ID: uuid.New(), Email: "a@b.c"}
	require.NoError(t, storage.CreateUser(ctx, user))

	start := time.Now()
	conv := user.AddConversation(model.NewConversation("", start))
	for i, text := range []string{"m1", "m2", "m3", "m4", "m5"} {
		role := model.MessageRoleUser
		if i%2 == 1 {
			role = model.MessageRoleAssistant
		}
		conv.AppendMessage(model.NewMessage(role, text, start.Add(time.Duration(i)*time.Second)))
	}
	want := conv.Clone()
	require.NoError(t, storage.SaveUser(ctx, user))

	got, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Conversations, 1)
	assert.Equal(t, want, got.Conversations[0])
}

func TestUserStorage_ReadsAreIsolated(t *testing.T) {
	ctx := context.Background()
	storage := NewUserStorage()
	user := model.User{ID: uuid.New(), Email: "a@b.c"}
	user.AddConversation(model.NewConversation("kept", time.Now()))
	require.NoError(t, storage.CreateUser(ctx, user))

	got, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	got.Conversations[0].Name = "changed"

	again, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", again.Conversations[0].Name)
}

func TestUserStorage_SaveUnknownUser(t *testing.T) {
	storage := NewUserStorage()
	err := storage.SaveUser(context.Background(), model.User{ID: uuid.New()})
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
