// Package bootstrap arma el dispatcher a partir de la config; lo comparten el
// host HTTP y la lambda.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jose-valero/discord-interactions/internal/adapters/discord"
	"github.com/jose-valero/discord-interactions/internal/app/commands"
	"github.com/jose-valero/discord-interactions/internal/infra/config"
	"github.com/jose-valero/discord-interactions/internal/infra/storage"
)

type App struct {
	Dispatcher *discord.Dispatcher
	Registry   *discord.Registry
	DB         *sql.DB // nil sin DATABASE_URL
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Build: sched puede ser nil; en ese caso el modo background cae a sync.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger, sched discord.Scheduler) (*App, error) {
	verifier, err := discord.NewVerifier(cfg.DiscordPublicKey)
	if err != nil {
		return nil, err
	}
	mode, err := discord.ParseMode(cfg.ExecutionMode)
	if err != nil {
		return nil, err
	}
	session, err := discord.NewRestSession(cfg.DiscordToken, cfg.DebugRest, log)
	if err != nil {
		return nil, err
	}

	reg := discord.NewRegistry()
	bot := commands.New(commands.WithLogger(log), commands.WithAdminRoles(cfg.AdminRoles()...))
	if err := bot.Register(reg); err != nil {
		return nil, fmt.Errorf("registrando handlers: %w", err)
	}

	app := &App{Registry: reg}
	opts := []discord.Option{
		discord.WithLogger(log),
		discord.WithMode(mode),
		discord.WithRestTimeout(cfg.RestTimeout),
	}
	if sched != nil {
		opts = append(opts, discord.WithScheduler(sched))
	}

	if cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		app.DB = db
		opts = append(opts, discord.WithRecorder(storage.NewAuditRepo(db)))
		log.Info("audit log enabled")
	}

	app.Dispatcher = discord.NewDispatcher(verifier, reg, session, opts...)
	if mode == discord.ModeBackground && app.Dispatcher.Mode() != discord.ModeBackground {
		log.Warn("background mode requested but host has no scheduler, running sync")
	}
	log.Info("dispatcher ready",
		"mode", app.Dispatcher.Mode().String(),
		"commands", reg.CommandCount(),
		"components", reg.ComponentCount(),
		"modals", reg.ModalCount(),
	)
	return app, nil
}
