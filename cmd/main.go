package main

import (
	"context"
	"errors"
	"os"

	"github.com/arredohq/arredo/internal/services"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	apiService := services.NewAPIService(config.API.BaseURL, config.API.TenantID, nil)
	store := services.NewTokenStore(config.Auth.TokenPath)

	if token, err := store.Load(); err == nil {
		apiService.SetTokenSource(services.NewTokenSource(config.API.BaseURL, nil, store, token))
	}

	crmService := services.NewCRMService(apiService, config.API.CompanySlug, config.API.SampleRoomsURL)

	db, err := shared.OpenCache(config.Database)
	if err != nil {
		logger.Warnf("local cache unavailable: %v", err)
	} else {
		defer db.Close()
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		CRM:    crmService,
		API:    apiService,
		Store:  store,
		DB:     db,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "arredo",
		Usage:    "Design interiors: photograph rooms, pick products, generate AI renderings",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
