package discord

import (
	"log/slog"
	"time"
)

// step mide una fase del dispatch: done := step(log, "verify"); ...; done().
func step(log *slog.Logger, label string) func() {
	start := time.Now()
	return func() { log.Debug("trace", "step", label, "took", time.Since(start)) }
}
