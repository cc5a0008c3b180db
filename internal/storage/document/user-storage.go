// Package document stores each user, conversations included, as a single MongoDB
// document keyed by the user id.
package document

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type messageDocument struct {
	ID        string    `bson:"id"`
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

type conversationDocument struct {
	ID        string            `bson:"id"`
	Name      string            `bson:"name"`
	Chats     []messageDocument `bson:"chats"`
	CreatedAt time.Time         `bson:"created_at"`
	IsDeleted bool              `bson:"is_deleted"`
}

type userDocument struct {
	ID            string                 `bson:"_id"`
	Name          string                 `bson:"name"`
	Email         string                 `bson:"email"`
	Password      string                 `bson:"password"`
	Conversations []conversationDocument `bson:"conversations"`
	Chats         []messageDocument      `bson:"chats,omitempty"`
}

type UserStorage struct {
	users *mongo.Collection
}

func NewUserStorage(db *mongo.Database) *UserStorage {
	return &UserStorage{
		users: db.Collection(usersCollection),
	}
}

// EnsureIndexes creates the unique email index.
func (u *UserStorage) EnsureIndexes(ctx context.Context) error {
	_, err := u.users.Indexes().CreateOne(
		ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to create email index")
	}
	return nil
}

func (u *UserStorage) CreateUser(ctx context.Context, user model.User) error {
	if _, err := u.users.InsertOne(ctx, toUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrUserAlreadyExists
		}
		return errors.Wrapf(err, "failed to insert user %s", user.ID)
	}
	return nil
}

func (u *UserStorage) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	return u.findOne(ctx, bson.M{"_id": userID.String()})
}

func (u *UserStorage) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return u.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// SaveUser replaces the stored document in one write.
func (u *UserStorage) SaveUser(ctx context.Context, user model.User) error {
	res, err := u.users.ReplaceOne(ctx, bson.M{"_id": user.ID.String()}, toUserDocument(user))
	if err != nil {
		return errors.Wrapf(err, "failed to replace user %s", user.ID)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (u *UserStorage) findOne(ctx context.Context, filter bson.M) (model.User, error) {
	var doc userDocument
	if err := u.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, errors.Wrap(err, "failed to find user")
	}
	return fromUserDocument(doc)
}

func toMessageDocuments(messages []model.Message) []messageDocument {
	docs := make([]messageDocument, 0, len(messages))
	for _, msg := range messages {
		docs = append(
			docs, messageDocument{
				ID:        msg.ID.String(),
				Role:      string(msg.Role),
				Content:   msg.Content,
				Timestamp: msg.Timestamp,
			},
		)
	}
	return docs
}

func fromMessageDocuments(docs []messageDocument) ([]model.Message, error) {
	messages := make([]model.Message, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse message id %s", doc.ID)
		}
		role, err := model.ParseMessageRole(doc.Role)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse role of message %s", doc.ID)
		}
		messages = append(
			messages, model.Message{
				ID:        id,
				Role:      role,
				Content:   doc.Content,
				Timestamp: doc.Timestamp,
			},
		)
	}
	return messages, nil
}

func toUserDocument(user model.User) userDocument {
	conversations := make([]conversationDocument, 0, len(user.Conversations))
	for _, conv := range user.Conversations {
		conversations = append(
			conversations, conversationDocument{
				ID:        conv.ID.String(),
				Name:      conv.Name,
				Chats:     toMessageDocuments(conv.Messages),
				CreatedAt: conv.CreatedAt,
				IsDeleted: conv.IsDeleted,
			},
		)
	}
	return userDocument{
		ID:            user.ID.String(),
		Name:          user.Name,
		Email:         normalizeEmail(user.Email),
		Password:      user.PasswordHash,
		Conversations: conversations,
		Chats:         toMessageDocuments(user.LegacyMessages),
	}
}

func fromUserDocument(doc userDocument) (model.User, error) {
	userID, err := uuid.Parse(doc.ID)
	if err != nil {
		return model.User{}, errors.Wrapf(err, "failed to parse user id %s", doc.ID)
	}
	conversations := make([]model.Conversation, 0, len(doc.Conversations))
	for _, convDoc := range doc.Conversations {
		convID, err := uuid.Parse(convDoc.ID)
		if err != nil {
			return model.User{}, errors.Wrapf(err, "failed to parse conversation id %s", convDoc.ID)
		}
		messages, err := fromMessageDocuments(convDoc.Chats)
		if err != nil {
			return model.User{}, errors.Wrapf(err, "failed to parse conversation %s", convDoc.ID)
		}
		conversations = append(
			conversations, model.Conversation{
				ID:        convID,
				Name:      convDoc.Name,
				Messages:  messages,
				CreatedAt: convDoc.CreatedAt,
				IsDeleted: convDoc.IsDeleted,
			},
		)
	}
	legacy, err := fromMessageDocuments(doc.Chats)
	if err != nil {
		return model.User{}, errors.Wrap(err, "failed to parse legacy chats")
	}
	return model.User{
		ID:             userID,
		Name:           doc.Name,
		Email:          doc.Email,
		PasswordHash:   doc.Password,
		Conversations:  conversations,
		LegacyMessages: legacy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
