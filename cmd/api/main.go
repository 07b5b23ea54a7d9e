package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Miro-wq/phonebook-api/internal/auth"
	"github.com/Miro-wq/phonebook-api/internal/avatar"
	"github.com/Miro-wq/phonebook-api/internal/config"
	"github.com/Miro-wq/phonebook-api/internal/handler"
	"github.com/Miro-wq/phonebook-api/internal/mailer"
	"github.com/Miro-wq/phonebook-api/internal/middleware"
	"github.com/Miro-wq/phonebook-api/internal/repository"
	"github.com/Miro-wq/phonebook-api/internal/server"
	"github.com/Miro-wq/phonebook-api/internal/usecase"
	"github.com/Miro-wq/phonebook-api/internal/validation"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.New(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)

	contactRepo, err := repository.NewContactFileRepository(cfg.ContactsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open contacts file")
	}

	avatarStore, err := avatar.NewStore(cfg.AvatarDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create avatar store")
	}

	validate, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build validator")
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.TokenExpiresIn)
	mail := mailer.NewMailer(&logger)

	authUC := usecase.NewAuthUsecase(userRepo, jwtAuth, mail, &logger, cfg.PublicBaseURL)
	userUC := usecase.NewUserUsecase(userRepo, avatarStore)
	contactUC := usecase.NewContactUsecase(contactRepo)

	srv := server.New(server.Options{
		Addr:           cfg.HTTPAddr,
		ContactHandler: handler.NewContactHandler(contactUC, validate, &logger),
		UserHandler:    handler.NewUserHandler(authUC, userUC, validate, &logger, cfg.TempDir),
		AuthGate:       middleware.Authenticate(jwtAuth, userRepo),
		AvatarDir:      cfg.AvatarDir,
		Logger:         &logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
