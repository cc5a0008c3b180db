package app

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamvkosarev/ai-chat-web/config"
	"github.com/iamvkosarev/ai-chat-web/internal/auth"
	"github.com/iamvkosarev/ai-chat-web/internal/handler"
	"github.com/iamvkosarev/ai-chat-web/internal/storage/document"
	in_memory "github.com/iamvkosarev/ai-chat-web/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/ai-chat-web/internal/storage/key-value"
	"github.com/iamvkosarev/ai-chat-web/internal/usecase"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	shutdownTimeout = 10 * time.Second
	connectTimeout  = 10 * time.Second
)

// Run serves the HTTP API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	InitLogger(cfg.Log)

	userStorage, closeStorage, err := newUserStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	h := NewHandler(cfg, userStorage)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serveErr error
	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			defer cancel()
			log.Info().Str("addr", cfg.HTTP.Addr).Str("storage", cfg.Storage.Backend).Msg("http server started")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr = errors.Wrap(err, "failed to serve http")
			}
		},
	)
	wg.Go(
		func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shut down http server")
			}
		},
	)

	wg.Wait()
	log.Info().Msg("http server stopped")
	return serveErr
}

// NewHandler wires the usecases over userStorage.
func NewHandler(cfg *config.Config, userStorage usecase.UserStorage) *handler.Handler {
	generator := usecase.NewOpenAIUsecase(cfg.AI)
	naming := usecase.NewNamingUsecase(
		usecase.NamingUsecaseDeps{
			Generator: generator,
		}, cfg.AI, cfg.Chat,
	)
	aiChatUsecase := usecase.NewAiChatUsecase(
		usecase.AiChatUsecaseDeps{
			UserStorage: userStorage,
			Generator:   generator,
			Namer:       naming,
		}, cfg.Chat,
	)
	userUsecase := usecase.NewUserUsecase(
		usecase.UserUsecaseDeps{
			UserStorage: userStorage,
		}, cfg.Auth,
	)
	return handler.NewHandler(
		handler.HandlerDeps{
			Chat:     aiChatUsecase,
			Accounts: userUsecase,
			Tokens:   auth.NewTokenManager(cfg.Auth),
		}, cfg.HTTP,
	)
}

func newUserStorage(ctx context.Context, cfg config.Storage) (usecase.UserStorage, func(), error) {
	switch cfg.Backend {
	case config.StorageBackendRedis:
		rdb := redis.NewClient(
			&redis.Options{
				Addr:     cfg.Redis.Endpoint,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
		)
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, errors.Wrapf(err, "failed to connect to redis %s", cfg.Redis.Endpoint)
		}
		return key_value.NewUserStorage(rdb), func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close redis client")
			}
		}, nil

	case config.StorageBackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to mongo")
		}
		disconnect := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("failed to disconnect from mongo")
			}
		}
		if err = client.Ping(connectCtx, nil); err != nil {
			disconnect()
			return nil, nil, errors.Wrap(err, "failed to ping mongo")
		}
		storage := document.NewUserStorage(client.Database(cfg.Mongo.Database))
		if err = storage.EnsureIndexes(connectCtx); err != nil {
			disconnect()
			return nil, nil, err
		}
		return storage, disconnect, nil

	default:
		log.Warn().Msg("using in-memory storage, conversations are lost on restart")
		return in_memory.NewUserStorage(), func() {}, nil
	}
}

func InitLogger(cfg config.Log) {
	var logWriter io.Writer = os.Stderr
	if cfg.Format != "json" {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = log.Output(logWriter)

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
