package httpdiscord

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// BackgroundTasks es el Scheduler del host HTTP: corre handlers después de
// responder y los espera al apagar.
type BackgroundTasks struct {
	g       errgroup.Group
	log     *slog.Logger
	running atomic.Int64
}

// NewBackgroundTasks: limit <= 0 es sin límite. Con límite, Go bloquea hasta
// que haya lugar.
func NewBackgroundTasks(limit int, log *slog.Logger) *BackgroundTasks {
	if log == nil {
		log = slog.Default()
	}
	t := &BackgroundTasks{log: log}
	if limit > 0 {
		t.g.SetLimit(limit)
	}
	return t
}

func (t *BackgroundTasks) Go(fn func()) {
	t.running.Add(1)
	t.g.Go(func() error {
		defer t.running.Add(-1)
		fn()
		return nil
	})
}

// Running cuenta las tareas en vuelo.
func (t *BackgroundTasks) Running() int64 { return t.running.Load() }

// Wait espera a que terminen todas o a que ctx venza.
func (t *BackgroundTasks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		_ = t.g.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.log.Warn("background tasks still running at shutdown", "running", t.Running())
		return ctx.Err()
	}
}
