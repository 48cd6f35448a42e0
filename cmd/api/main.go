// @title                       Account Service API
// @version                     1.0
// @description                 Accounts, roles and JWT sessions.
// @BasePath                    /api/v1
// @securityDefinitions.oauth2.password OAuth2Password
// @tokenUrl                    /api/v1/auth/login/access-token
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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/core/service"
	"github.com/99minutos/account-service/internal/infrastructure/config"
	"github.com/99minutos/account-service/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/account-service/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/account-service/internal/infrastructure/db/redis"
	"github.com/99minutos/account-service/internal/infrastructure/http/handlers"
	"github.com/99minutos/account-service/internal/infrastructure/mail"
	"github.com/99minutos/account-service/internal/infrastructure/queue"
	"github.com/99minutos/account-service/internal/infrastructure/security"
	"github.com/99minutos/account-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: cfg.ProjectName,
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()
	if cfg.SecretGenerated() {
		log.Warn().Msg("SECRET_KEY not set, using a random key; tokens will not survive a restart")
	}

	repo, checks, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		throttle service.RecoveryThrottle
		rdb      *goredis.Client
	)
	if cfg.Redis.Enabled {
		rdb, err = redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		throttle = redisstore.NewRecoveryThrottle(rdb, cfg.Mail.RecoveryThrottle)
		checks = append(checks, handlers.RedisCheck(rdb))
	}

	hasher := security.NewHasher(cfg.Security.BcryptCost)
	tokens := security.NewTokenService([]byte(cfg.Security.SecretKey), cfg.RefreshTokenTTL(), time.Now).
		WithResetTTL(cfg.ResetTokenTTL())

	sender, err := newSender(cfg, log)
	if err != nil {
		return err
	}
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, sender, log)
	dispatcher.Start(context.Background())
	defer func() {
		dispatcher.Close()
		dispatcher.Wait()
		log.Info().Msg("mail queue drained")
	}()

	templates, err := mail.NewTemplates(cfg.ProjectName, cfg.FrontendHost, cfg.ResetTokenTTL())
	if err != nil {
		return fmt.Errorf("mail templates: %w", err)
	}
	notifier := service.NewNotifier(dispatcher, templates)

	if _, err := service.Bootstrap(ctx, repo, hasher, service.FirstSuperuser{
		Email:    cfg.FirstSuperuser.Email,
		Username: cfg.FirstSuperuser.Username,
		Password: cfg.FirstSuperuser.Password,
	}, log); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	auth := service.NewAuthService(repo, hasher, tokens, notifier, cfg.AccessTokenTTL(), log)
	if throttle != nil {
		auth.WithThrottle(throttle)
	}

	e := api.NewRouter(api.Dependencies{
		Auth:      auth,
		Sessions:  service.NewSessionService(repo, tokens),
		Accounts:  service.NewAccountService(repo, hasher, notifier, log),
		Checks:    checks,
		Log:       log,
		APIPrefix: cfg.APIV1Str,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.AccountRepository, []handlers.Check, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn().Msg("using in-memory storage; accounts are lost on restart")
		return memory.NewAccountRepository(), nil, func() {}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("mongo: %w", err)
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}

	repo := mongostore.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return repo, []handlers.Check{handlers.MongoCheck(db)}, closeFn, nil
}

func newSender(cfg *config.Config, log zerolog.Logger) (ports.Mailer, error) {
	if !cfg.EmailsEnabled() {
		log.Warn().Msg("SMTP not configured, emails will only be logged")
		return mail.NewLogSender(log), nil
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.User,
		Password:  cfg.SMTP.Password,
		TLS:       cfg.SMTP.TLS,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.EmailsFromName(),
	})
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}
	return sender, nil
}
