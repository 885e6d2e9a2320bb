package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/regdesk/pkg/config"
	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/requestid"
	"github.com/dmitrymomot/regdesk/pkg/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		log := logger.New(logger.WithDevelopment("regdesk"))
		log.Error("invalid configuration", logger.Error(err), slog.String("hint", remediation(err)))
		os.Exit(2)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, cfg.App.Name),
		logger.WithLevel(parseLevel(cfg.App.LogLevel)),
		logger.WithContextExtractors(logger.RequestIDExtractor(requestid.FromContext)),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("regdesk stopped", logger.Error(err), slog.String("hint", remediation(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	app, err := build(ctx, cfg, log)
	if err != nil {
		app.close(context.Background())
		return err
	}
	return app.serve(ctx)
}

// remediation turns fatal startup errors into an operator hint.
func remediation(err error) string {
	switch {
	case errors.Is(err, config.ErrMissingSecret), errors.Is(err, token.ErrMissingSecret):
		return "set APP_SIGNING_KEY to a long random value; remember-me links depend on it"
	case errors.Is(err, records.ErrConfiguration):
		return "create the missing table, share the spreadsheet with the service account, or set STORE_PROVISIONING=auto"
	case errors.Is(err, config.ErrInvalidConfig):
		return "check the environment variables named in the error"
	default:
		return "see the error for details"
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
