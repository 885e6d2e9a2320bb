// Package config loads the service configuration from the environment.
//
// `.env` files are read with github.com/joho/godotenv and tagged structs are
// parsed with github.com/caarlos0/env/v11. Every struct type is parsed once
// and cached, so packages can call Load for their own config type without
// re-reading the environment:
//
//	var pgCfg pg.Config
//	if err := config.Load(&pgCfg); err != nil {
//		return err
//	}
//
// FromEnv returns the aggregate Config used by cmd/regdesk and validates the
// settings the service cannot start without:
//
//	cfg, err := config.FromEnv()
//	if errors.Is(err, config.ErrMissingSecret) {
//		// APP_SIGNING_KEY is not set
//	}
//
// Tests that change the environment call ResetCache or ForceReload.
package config
