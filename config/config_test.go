package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(
		t, os.WriteFile(
			path, []byte(`
auth:
  jwt_secret: file-secret
ai:
  api_key: file-key
  model: gpt-4o-mini
storage:
  backend: redis
  redis:
    endpoint: redis:6379
chat:
  strict_conversation_ids: true
log:
  level: debug
`), 0o600,
		),
	)
	t.Setenv("AI_MODEL", "gemini-1.5-pro")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
	assert.Equal(t, StorageBackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Endpoint)
	assert.True(t, cfg.Chat.StrictConversationIDs)
	assert.Equal(t, "debug", cfg.Log.Level)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 120*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, "New Conversation", cfg.Chat.PlaceholderName)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("AI_API_KEY", "env-key")
	t.Setenv("STORAGE_BACKEND", "mongo")
	t.Setenv("MONGO_DATABASE", "chat_test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, StorageBackendMongo, cfg.Storage.Backend)
	assert.Equal(t, "chat_test", cfg.Storage.Mongo.Database)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai/", cfg.AI.BaseURL)
	assert.False(t, cfg.Chat.StrictConversationIDs)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Auth:    Auth{JWTSecret: "secret"},
		AI:      AI{APIKey: "key"},
		Storage: Storage{Backend: StorageBackendMemory},
	}
	require.NoError(t, valid.Validate())

	unknown := valid
	unknown.Storage.Backend = "postgres"
	assert.ErrorIs(t, unknown.Validate(), ErrUnknownStorageBackend)

	noSecret := valid
	noSecret.Auth.JWTSecret = ""
	assert.ErrorIs(t, noSecret.Validate(), ErrMissingJWTSecret)

	noKey := valid
	noKey.AI.APIKey = ""
	assert.ErrorIs(t, noKey.Validate(), ErrMissingAIAPIKey)
}
