// @title           Auth System API
// @version         1.0
// @description     Registration, login, session tokens and email verification.
// @host            localhost:8080
// @BasePath        /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/api"
	"github.com/99minutos/auth-system/internal/core/ports"
	"github.com/99minutos/auth-system/internal/core/service"
	"github.com/99minutos/auth-system/internal/infrastructure/db/mongo"
	"github.com/99minutos/auth-system/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-system/internal/infrastructure/denylist"
	"github.com/99minutos/auth-system/internal/infrastructure/mail"
	"github.com/99minutos/auth-system/internal/infrastructure/queue"
	"github.com/99minutos/auth-system/internal/pkg/config"
	"github.com/99minutos/auth-system/pkg/logger"
)

const (
	serviceName     = "auth-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Credential store ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     serviceName,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		Timeout:     cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongo.Disconnect(mongoClient, cfg.Mongo.Timeout); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	// --- Token denylist ---
	var (
		rdb  *goredis.Client
		deny ports.Denylist
	)
	switch cfg.Auth.Denylist {
	case config.DenylistRedis:
		rdb, err = redis.Connect(ctx, redis.Config{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		deny = redis.NewDenylist(rdb)
	case config.DenylistMemory:
		deny = denylist.NewMemory()
	default:
		log.Warn().Msg("token denylist disabled, logout only discards tokens client-side")
	}

	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, deny,
		logger.Component("token"), service.WithIssuer(cfg.Auth.JWTIssuer))
	if err != nil {
		return err
	}

	// --- Mail ---
	transport, closeTransport, err := newMailTransport(cfg.Mail, log)
	if err != nil {
		return err
	}
	defer closeTransport()

	dispatcher := queue.NewMailDispatcher(cfg.Mail.Workers, transport, logger.Component("mail"))
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// --- Services ---
	authService := service.NewAuthService(users, tokens, service.AuthConfig{
		BcryptCost:  cfg.Auth.BcryptCost,
		PhoneRegion: cfg.Auth.PhoneRegion,
	}, logger.Component("auth"))
	verificationService := service.NewVerificationService(users, tokens, dispatcher, service.VerificationConfig{
		TTL:         cfg.Verification.TTL,
		LinkBaseURL: cfg.Verification.LinkURL,
	}, logger.Component("verification"))
	userService := service.NewUserService(users, cfg.Auth.PhoneRegion, logger.Component("users"))

	e := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Tokens:       tokens,
		Verification: verificationService,
		Users:        userService,
		Mongo:        db,
		Redis:        rdb,
		Log:          log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("denylist", cfg.Auth.Denylist).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}

func newMailTransport(cfg config.MailConfig, log zerolog.Logger) (ports.Mailer, func(), error) {
	if cfg.AMQPURL == "" {
		log.Info().Msg("AMQP_URL not set, verification mails are written to the log")
		return mail.NewLogMailer(logger.Component("mail")), func() {}, nil
	}

	pub, err := mail.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		return nil, nil, err
	}
	return pub, func() { _ = pub.Close() }, nil
}
