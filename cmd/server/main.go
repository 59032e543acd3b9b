package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vedran77/tweeter/internal/config"
	"github.com/vedran77/tweeter/internal/database"
	"github.com/vedran77/tweeter/internal/infrastructure/redis"
	"github.com/vedran77/tweeter/internal/logging"
	"github.com/vedran77/tweeter/internal/repository"
	"github.com/vedran77/tweeter/internal/repository/memory"
	postgresrepo "github.com/vedran77/tweeter/internal/repository/postgres"
	"github.com/vedran77/tweeter/internal/security/credential"
	"github.com/vedran77/tweeter/internal/service"
	"github.com/vedran77/tweeter/internal/storage/blob"
	"github.com/vedran77/tweeter/internal/transport/http/handlers"
	"github.com/vedran77/tweeter/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	userRepo, tweetRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Blob storage
	blobs, uploadDir, err := openBlobs(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Services
	clock := util.NewRealClock()
	tokens := credential.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, credential.NewArgon2Hasher(), tokens, clock, logger)
	userService := service.NewUserService(userRepo, logger)
	tweetService := service.NewTweetService(tweetRepo, userRepo, clock, logger)

	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		authService.SetLoginLimiter(redis.NewLoginThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginWindow))
	} else {
		logger.Info("REDIS_URL not set, login throttling disabled")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:        authService,
		Users:       userService,
		Tweets:      tweetService,
		Blobs:       blobs,
		Tokens:      tokens,
		Logger:      logger,
		UploadDir:   uploadDir,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":  server.Addr,
			"store": cfg.Store,
			"blobs": cfg.BlobBackend,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return errors.Wrap(err, "listening")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}

	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (repository.UserRepository, repository.TweetRepository, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewUserRepo(), memory.NewTweetRepo(), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	logger.WithField("db", cfg.DBName).Info("connected to database")

	return postgresrepo.NewUserRepo(pool), postgresrepo.NewTweetRepo(pool), pool.Close, nil
}

// openBlobs returns the upload store and, for the disk backend, the
// directory to serve under /uploads/.
func openBlobs(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (blob.Store, string, error) {
	if cfg.BlobBackend == config.BlobMinIO {
		store, err := blob.NewMinIO(ctx, blob.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		}, logger)
		return store, "", err
	}

	disk, err := blob.NewDisk(cfg.UploadDir, "/uploads", logger)
	if err != nil {
		return nil, "", err
	}
	return disk, disk.Dir(), nil
}
