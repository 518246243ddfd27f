package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"vaultEnvelopes/internal/api"
	"vaultEnvelopes/internal/assign"
	"vaultEnvelopes/internal/auth"
	"vaultEnvelopes/internal/config"
	"vaultEnvelopes/internal/database"
	"vaultEnvelopes/internal/kv"
	"vaultEnvelopes/internal/media"
	"vaultEnvelopes/internal/worker"
)

// kvPrefix Redis 中本服务键的命名空间。
const kvPrefix = "vault-envelopes:"

func newLogger(development bool) *slog.Logger {
	if development {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func main() {
	cfg := config.MustLoad()
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("invalid api config: %v", err)
	}

	development := cfg.App.IsDevelopment()
	logger := newLogger(development)
	slog.SetDefault(logger)
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDatabase(cfg.Database, development)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database ready")

	relay, err := media.New(cfg.Media)
	if err != nil {
		log.Fatalf("init media relay: %v", err)
	}
	if cfg.Media.Provider == config.ProviderCloudinary && !cfg.Media.Cloudinary.Configured() {
		logger.Warn("cloudinary credentials missing, uploads will fail")
	}

	var (
		store   kv.Store            = kv.NewMemory()
		cleaner worker.MediaCleaner = worker.NewInlineCleaner(relay)
	)
	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()

		store = kv.NewRedis(redisClient, kvPrefix)
		cleaner = worker.NewQueueCleaner(asynqClient, logger)
		logger.Info("redis enabled", slog.String("addr", cfg.Redis.Addr()))
	} else {
		logger.Info("redis not configured, using in-memory assignments and inline media cleanup")
	}

	tokens, err := auth.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}
	provision := auth.Provisioning{
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
		Enabled:  cfg.Auth.AutoProvision,
	}
	if provision.Enabled {
		logger.Warn("admin auto-provisioning is enabled; disable with ADMIN_AUTO_PROVISION=false once an admin exists")
	}
	authenticator := auth.NewAuthenticator(database.NewAdminStore(db), tokens, provision, logger)

	var scanner api.Scanner
	if cfg.Clamd.Addr != "" {
		scanner = api.NewClamdScanner(cfg.Clamd.Addr)
		logger.Info("upload scanning enabled", slog.String("clamd_addr", cfg.Clamd.Addr))
	}

	tarot := database.NewTarotStore(db)
	router := api.NewRouter(api.Dependencies{
		Envelopes:     database.NewEnvelopeStore(db),
		Tarot:         tarot,
		Authenticator: authenticator,
		Tokens:        tokens,
		Assigner:      assign.New(store, tarot, assign.WithLogger(logger)),
		Relay:         relay,
		Cleaner:       cleaner,
		Scanner:       scanner,
		Logger:        logger,
		ExposeErrors:  development,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("api listening", slog.String("addr", srv.Addr), slog.String("env", cfg.App.Env))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to start api server: %v", err)
	}
	logger.Info("api stopped")
}
