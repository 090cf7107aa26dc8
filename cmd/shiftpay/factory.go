package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"shiftpay/internal/api"
	"shiftpay/internal/cli"
	"shiftpay/internal/config"
	"shiftpay/internal/logging"
	"shiftpay/internal/persistence"
	"shiftpay/internal/services"
)

// newApp opens the storage selected by SHIFTPAY_ENV and the configured
// driver, connects the remote API when it is configured and wires the services.
func newApp(ctx context.Context, cfg *config.Config, streams cli.IOStreams) (*cli.App, error) {
	env := config.GetEnvironment()
	store, err := persistence.NewFactory(env).Create(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := services.Dependencies{
		Persistence: store,
		Config:      cfg,
	}
	if cfg.IsRemoteEnabled() {
		source := api.StaticToken(cfg.Remote.Token)
		client := api.NewClient(api.OptionsFromConfig(cfg.Remote), source)
		deps.Auth = api.NewTokenAuth(source)
		deps.RemoteShifts = client.Shifts
		deps.RemoteWorkInfos = client.WorkInfos
		log.Debug().Str("url", cfg.Remote.BaseURL).Msg("remote sync enabled")
	}

	app, err := cli.NewApp(services.NewServiceContainer(deps), cfg, streams, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logging.Debugln("application ready:", env, cfg.Storage.Driver)
	return app, nil
}
