package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwc-recycling/accounts-api/internal/api"
	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/service"
	"github.com/iwc-recycling/accounts-api/internal/infrastructure/config"
	mongodb "github.com/iwc-recycling/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/iwc-recycling/accounts-api/internal/infrastructure/db/redis"
	"github.com/iwc-recycling/accounts-api/internal/infrastructure/queue"
	"github.com/iwc-recycling/accounts-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection")
	}
	defer rdb.Close()

	accountRepo := mongodb.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb indexes")
	}

	dispatcher := queue.NewDispatcher(0, mongodb.NewAuditRepository(db), log)
	dispatcher.Start(ctx)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	registration := service.NewRegistrationService(accountRepo, tokens, domain.DefaultRolePolicy(), dispatcher)
	accounts := service.NewAuthService(accountRepo, tokens, redisdb.NewLoginLimiter(rdb), dispatcher, log)

	e := api.NewRouter(api.Deps{
		Registration:    registration,
		Accounts:        accounts,
		Tokens:          tokens,
		Mongo:           db,
		Redis:           rdb,
		Log:             log,
		AllowedOrigin:   cfg.AllowedOrigin,
		ExposeInternals: !cfg.Production(),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server running")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
