package in_memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
)

type UserStorage struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]model.User
	emailIDs map[string]uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		users:    make(map[uuid.UUID]model.User),
		emailIDs: make(map[string]uuid.UUID),
	}
}

func (u *UserStorage) CreateUser(_ context.Context, user model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, ok := u.emailIDs[email]; ok {
		return model.ErrUserAlreadyExists
	}
	if _, ok := u.users[user.ID]; ok {
		return model.ErrUserAlreadyExists
	}
	u.emailIDs[email] = user.ID
	u.users[user.ID] = user.Clone()
	return nil
}

func (u *UserStorage) GetUser(_ context.Context, userID uuid.UUID) (model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	user, ok := u.users[userID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (u *UserStorage) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	u.mu.RLock()
	userID, ok := u.emailIDs[normalizeEmail(email)]
	u.mu.RUnlock()
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u.GetUser(ctx, userID)
}

// SaveUser replaces the whole user document. The last write wins.
func (u *UserStorage) SaveUser(_ context.Context, user model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.users[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	u.users[user.ID] = user.Clone()
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
