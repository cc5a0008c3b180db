package key_value

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// userInternal is the JSON document stored under user_<id>. The whole document is
// rewritten on every save.
type userInternal struct {
	UserID         string                 `json:"user_id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	PasswordHash   string                 `json:"password_hash"`
	Conversations  []conversationInternal `json:"conversations"`
	LegacyMessages []messageInternal      `json:"chats,omitempty"`
}

type UserStorage struct {
	rdb *redis.Client
}

func NewUserStorage(rdb *redis.Client) *UserStorage {
	return &UserStorage{
		rdb: rdb,
	}
}

func (u *UserStorage) CreateUser(ctx context.Context, user model.User) error {
	emailKey := getUserEmailKey(user.Email)
	created, err := u.rdb.SetNX(ctx, emailKey, user.ID.String(), 0).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to reserve email %s", emailKey)
	}
	if !created {
		return model.ErrUserAlreadyExists
	}
	if err = u.setUser(ctx, user, false); err != nil {
		if delErr := u.rdb.Del(ctx, emailKey).Err(); delErr != nil {
			return errors.Wrapf(delErr, "failed to release email %s after %v", emailKey, err)
		}
		return errors.Wrap(err, "failed to set user")
	}
	return nil
}

func (u *UserStorage) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	userInt, err := u.getUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return fromUserInternal(userInt)
}

func (u *UserStorage) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	emailKey := getUserEmailKey(email)
	userIDStr, err := u.rdb.Get(ctx, emailKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, errors.Wrapf(err, "failed to get user id %s", emailKey)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return model.User{}, errors.Wrapf(err, "failed to parse userID %s", userIDStr)
	}
	return u.GetUser(ctx, userID)
}

func (u *UserStorage) SaveUser(ctx context.Context, user model.User) error {
	return u.setUser(ctx, user, true)
}

func (u *UserStorage) getUser(ctx context.Context, userID uuid.UUID) (userInternal, error) {
	userIDKey := getUserIDKey(userID)
	userRaw, err := u.rdb.Get(ctx, userIDKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return userInternal{}, model.ErrUserNotFound
		}
		return userInternal{}, errors.Wrapf(err, "failed to get user %s", userID)
	}
	var user userInternal
	if err = json.Unmarshal([]byte(userRaw), &user); err != nil {
		return userInternal{}, errors.Wrapf(err, "failed to unmarshal user %s", userID)
	}
	return user, nil
}

// setUser writes the document; with mustExist it only overwrites an existing key.
func (u *UserStorage) setUser(ctx context.Context, user model.User, mustExist bool) error {
	userIDKey := getUserIDKey(user.ID)
	userJSON, err := json.Marshal(toUserInternal(user))
	if err != nil {
		return errors.Wrap(err, "failed to marshal internal user")
	}
	if !mustExist {
		if err = u.rdb.Set(ctx, userIDKey, userJSON, 0).Err(); err != nil {
			return errors.Wrapf(err, "failed to save user %s", user.ID)
		}
		return nil
	}
	updated, err := u.rdb.SetXX(ctx, userIDKey, userJSON, 0).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to save user %s", user.ID)
	}
	if !updated {
		return model.ErrUserNotFound
	}
	return nil
}

func toUserInternal(user model.User) userInternal {
	return userInternal{
		UserID:         user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		PasswordHash:   user.PasswordHash,
		Conversations:  toConversationsInternal(user.Conversations),
		LegacyMessages: toMessagesInternal(user.LegacyMessages),
	}
}

func fromUserInternal(userInt userInternal) (model.User, error) {
	userID, err := uuid.Parse(userInt.UserID)
	if err != nil {
		return model.User{}, errors.Wrapf(err, "failed to parse userID %s", userInt.UserID)
	}
	conversations, err := fromConversationsInternal(userInt.Conversations)
	if err != nil {
		return model.User{}, errors.Wrapf(err, "failed to parse conversations of %s", userID)
	}
	legacy, err := fromMessagesInternal(userInt.LegacyMessages)
	if err != nil {
		return model.User{}, errors.Wrapf(err, "failed to parse legacy messages of %s", userID)
	}
	return model.User{
		ID:             userID,
		Name:           userInt.Name,
		Email:          userInt.Email,
		PasswordHash:   userInt.PasswordHash,
		Conversations:  conversations,
		LegacyMessages: legacy,
	}, nil
}

func getUserEmailKey(email string) string {
	return fmt.Sprintf("email_%s", strings.ToLower(strings.TrimSpace(email)))
}

func getUserIDKey(id uuid.UUID) string {
	return fmt.Sprintf("user_%s", id.String())
}
