// @title                       Adoption API
// @version                     1.0
// @description                 Pet adoption backend: accounts, pet listings and the visit/adoption workflow.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/petadopt/adoption-api/docs"
	"github.com/petadopt/adoption-api/internal/api"
	"github.com/petadopt/adoption-api/internal/api/handler"
	"github.com/petadopt/adoption-api/internal/core/service"
	mongodb "github.com/petadopt/adoption-api/internal/infrastructure/db/mongo"
	redisdb "github.com/petadopt/adoption-api/internal/infrastructure/db/redis"
	"github.com/petadopt/adoption-api/internal/infrastructure/queue"
	"github.com/petadopt/adoption-api/internal/infrastructure/storage"
	"github.com/petadopt/adoption-api/internal/pkg/config"
	"github.com/petadopt/adoption-api/pkg/logger"
)

const serviceName = "adoption-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: serviceName})
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	userRepo := mongodb.NewUserRepository(db)
	petRepo := mongodb.NewPetRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, petRepo); err != nil {
		return err
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Images ---
	images, err := storage.NewDiskStore(cfg.Uploads.Dir, int64(cfg.Uploads.MaxSizeMB)<<20)
	if err != nil {
		return err
	}

	// Workers stop after the server; jobs still buffered are drained on stop.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	cleaner := queue.NewDispatcher(cfg.Uploads.CleanupWorkers, images, log)
	cleaner.Start(workerCtx)
	defer func() {
		stopWorkers()
		cleaner.Wait()
	}()

	// --- Services ---
	authService := service.NewAuthService(userRepo, redisdb.NewIdentityCache(rdb, cfg.Redis.IdentityTTL), service.AuthOptions{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, log)
	petService := service.NewPetService(petRepo, images, cleaner, log)

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		PetService:  petService,
		ImageDir:    images.Dir(),
		Logger:      log,
		Readiness: []handler.DependencyCheck{
			{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
