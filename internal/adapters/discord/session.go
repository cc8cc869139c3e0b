package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// NewRestSession builds a REST-only discordgo session (no gateway is ever opened).
// Retries are off: a failed call fails, the Handle timeout is the only bound.
func NewRestSession(token string, debugRest bool, log *slog.Logger) (*discordgo.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("discord: empty bot token")
	}
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}
	s, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.MaxRestRetries = 0
	s.ShouldRetryOnRateLimit = false
	s.LogLevel = discordgo.LogWarning
	if debugRest {
		s.LogLevel = discordgo.LogDebug
	}
	if log != nil {
		BridgeLogger(log)
	}
	return s, nil
}

// BridgeLogger manda el logger global de discordgo a slog.
func BridgeLogger(log *slog.Logger) {
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		var lvl slog.Level
		switch msgL {
		case discordgo.LogError:
			lvl = slog.LevelError
		case discordgo.LogWarning:
			lvl = slog.LevelWarn
		case discordgo.LogInformational:
			lvl = slog.LevelInfo
		default:
			lvl = slog.LevelDebug
		}
		log.Log(context.Background(), lvl, fmt.Sprintf(format, a...), "component", "discordgo")
	}
}
