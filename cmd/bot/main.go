// Host HTTP de interacciones: POST /interactions, GET /healthz.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jose-valero/discord-interactions/internal/adapters/httpdiscord"
	"github.com/jose-valero/discord-interactions/internal/app/bootstrap"
	"github.com/jose-valero/discord-interactions/internal/infra/config"
	"github.com/jose-valero/discord-interactions/internal/infra/logging"
)

const shutdownGrace = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error", "text").Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tasks := httpdiscord.NewBackgroundTasks(64, log)
	app, err := bootstrap.Build(ctx, cfg, log, tasks)
	if err != nil {
		log.Error("bootstrap", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := httpdiscord.New(cfg.HTTPAddr, app.Dispatcher, tasks, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server", "err", err)
		os.Exit(1)
	}
}
