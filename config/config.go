package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendRedis  = "redis"
	StorageBackendMongo  = "mongo"
)

var (
	ErrUnknownStorageBackend = errors.New("unknown storage backend")
	ErrMissingJWTSecret      = errors.New("auth jwt secret is required")
	ErrMissingAIAPIKey       = errors.New("ai api key is required")
)

type HTTP struct {
	Addr         string `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	AllowOrigin  string `yaml:"allow_origin" env:"HTTP_ALLOW_ORIGIN" env-default:"*"`
	SecureCookie bool   `yaml:"secure_cookie" env:"HTTP_SECURE_COOKIE"`
}

type Auth struct {
	JWTSecret    string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"168h"`
	PasswordCost int           `yaml:"password_cost" env:"PASSWORD_COST" env-default:"10"`
}

// AI configures the OpenAI-compatible generative-language endpoint. The default
// base URL points at Gemini's OpenAI compatibility layer.
type AI struct {
	APIKey              string        `yaml:"api_key" env:"AI_API_KEY"`
	BaseURL             string        `yaml:"base_url" env:"AI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Model               string        `yaml:"model" env:"AI_MODEL" env-default:"gemini-1.5-flash"`
	Temperature         float32       `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.7"`
	MaxTokens           int           `yaml:"max_tokens" env:"AI_MAX_TOKENS" env-default:"0"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env:"AI_REQUEST_TIMEOUT" env-default:"120s"`
	NamingTimeout       time.Duration `yaml:"naming_timeout" env:"AI_NAMING_TIMEOUT" env-default:"15s"`
	ContextWindowTokens int           `yaml:"context_window_tokens" env:"AI_CONTEXT_WINDOW_TOKENS" env-default:"0"`
}

type Redis struct {
	Endpoint string `yaml:"endpoint" env:"REDIS_ENDPOINT" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Mongo struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"ai_chat"`
}

type Storage struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	Redis   Redis  `yaml:"redis"`
	Mongo   Mongo  `yaml:"mongo"`
}

type Chat struct {
	// StrictConversationIDs rejects unknown or deleted conversation ids instead of
	// starting a new conversation in their place.
	StrictConversationIDs bool   `yaml:"strict_conversation_ids" env:"CHAT_STRICT_CONVERSATION_IDS"`
	PlaceholderName       string `yaml:"placeholder_name" env:"CHAT_PLACEHOLDER_NAME" env-default:"New Conversation"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Auth    Auth    `yaml:"auth"`
	AI      AI      `yaml:"ai"`
	Storage Storage `yaml:"storage"`
	Chat    Chat    `yaml:"chat"`
	Log     Log     `yaml:"log"`
}

// LoadConfig reads cfgPath (when given) and then applies the environment on top.
// A .env file in the working directory is loaded first if present.
func LoadConfig(cfgPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", cfgPath)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendMemory, StorageBackendRedis, StorageBackendMongo:
	default:
		return errors.Wrapf(ErrUnknownStorageBackend, "%q", c.Storage.Backend)
	}
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.AI.APIKey == "" {
		return ErrMissingAIAPIKey
	}
	return nil
}
