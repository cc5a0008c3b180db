package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/config"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type UserStorage interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	SaveUser(ctx context.Context, user model.User) error
}

type UserUsecaseDeps struct {
	UserStorage UserStorage
}

type UserUsecase struct {
	UserUsecaseDeps
	authCfg config.Auth
}

func NewUserUsecase(deps UserUsecaseDeps, authCfg config.Auth) *UserUsecase {
	if authCfg.PasswordCost == 0 {
		authCfg.PasswordCost = bcrypt.DefaultCost
	}
	return &UserUsecase{
		UserUsecaseDeps: deps,
		authCfg:         authCfg,
	}
}

func (u *UserUsecase) SignUp(ctx context.Context, name, email, password string) (model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return model.User{}, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.authCfg.PasswordCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "failed to hash password")
	}
	user := model.User{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Conversations: make([]model.Conversation, 0),
	}
	if err = u.UserStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.User{}, model.ErrUserAlreadyExists
		}
		return model.User{}, errors.Wrap(err, "failed to create user")
	}
	return user, nil
}

// LogIn reports ErrInvalidCredentials for both an unknown email and a wrong password.
func (u *UserUsecase) LogIn(ctx context.Context, email, password string) (model.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return model.User{}, ErrMissingCredentials
	}
	user, err := u.UserStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, errors.Wrap(err, "failed to get user")
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (u *UserUsecase) GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := u.UserStorage.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}
