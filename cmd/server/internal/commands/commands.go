package commands

import (
	"context"
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/server"

	"github.com/rs/zerolog"
)

type Globals struct {
	Debug   bool
	Version string
}

func setup(globals *Globals) (*config.Config, zerolog.Logger) {
	cfg := config.Load()
	log := logger.Setup(globals.Debug || cfg.Dev())
	return cfg, log
}

type ServeCmd struct{}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, log := setup(globals)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info().
		Str("version", globals.Version).
		Str("store", cfg.StoreDriver).
		Str("feed", cfg.FeedDriver).
		Msg("Starting taskboard")

	srv, err := server.Init(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("server initialization failed: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to release connections")
		}
	}()

	return srv.Run(ctx)
}

type MigrateCmd struct {
	Up   MigrateUpCmd   `cmd:"" default:"1" help:"Apply every pending migration."`
	Down MigrateDownCmd `cmd:"" help:"Revert migrations."`
}

type MigrateUpCmd struct{}

func (m *MigrateUpCmd) Run(globals *Globals) error {
	cfg, log := setup(globals)
	return repository.Migrate(cfg.DatabaseURL(), log)
}

type MigrateDownCmd struct {
	Steps int `help:"Number of migrations to revert." default:"1"`
}

func (m *MigrateDownCmd) Run(globals *Globals) error {
	if m.Steps < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}
	cfg, log := setup(globals)
	return repository.MigrateDown(cfg.DatabaseURL(), m.Steps, log)
}
