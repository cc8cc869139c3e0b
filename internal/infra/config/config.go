package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DiscordPublicKey string `koanf:"discord_public_key"`
	DiscordToken     string `koanf:"discord_bot_token"`
	DiscordAppID     string `koanf:"discord_application_id"`
	DiscordGuild     string `koanf:"discord_guild_id"` // vacío = comandos globales
	AdminRoleIDs     string `koanf:"admin_role_ids"`   // separados por coma

	ExecutionMode string        `koanf:"execution_mode"` // sync | background
	HTTPAddr      string        `koanf:"http_addr"`
	RestTimeout   time.Duration `koanf:"rest_timeout"`
	DebugRest     bool          `koanf:"debug_rest"`

	DatabaseURL    string        `koanf:"database_url"` // opcional: audit log
	AuditRetention time.Duration `koanf:"audit_retention"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func Default() *Config {
	return &Config{
		ExecutionMode:  "sync",
		HTTPAddr:       ":8080",
		RestTimeout:    5 * time.Second,
		AuditRetention: 7 * 24 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// keys que leemos del entorno; el resto de variables se ignora.
var envKeys = map[string]bool{
	"DISCORD_PUBLIC_KEY":     true,
	"DISCORD_BOT_TOKEN":      true,
	"DISCORD_APPLICATION_ID": true,
	"DISCORD_GUILD_ID":       true,
	"ADMIN_ROLE_IDS":         true,
	"EXECUTION_MODE":         true,
	"HTTP_ADDR":              true,
	"REST_TIMEOUT":           true,
	"DEBUG_REST":             true,
	"DATABASE_URL":           true,
	"AUDIT_RETENTION":        true,
	"LOG_LEVEL":              true,
	"LOG_FORMAT":             true,
}

// Load: defaults, luego .env (si existe), luego el YAML de CONFIG_FILE, luego el entorno.
// No valida; eso lo hace Validate según lo que necesite cada binario.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		if !envKeys[s] {
			return ""
		}
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks what every host needs: the public key to verify requests and
// the token to answer them.
func (c *Config) Validate() error {
	var errs []error
	if c.DiscordPublicKey == "" {
		errs = append(errs, errors.New("faltante DISCORD_PUBLIC_KEY"))
	}
	if c.DiscordToken == "" {
		errs = append(errs, errors.New("faltante DISCORD_BOT_TOKEN"))
	}
	switch strings.ToLower(c.ExecutionMode) {
	case "", "sync", "background":
	default:
		errs = append(errs, fmt.Errorf("invalid execution_mode %q: must be sync or background", c.ExecutionMode))
	}
	if c.RestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("rest_timeout must be positive, got %s", c.RestTimeout))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// AdminRoles parte ADMIN_ROLE_IDS.
func (c *Config) AdminRoles() []string {
	var out []string
	for _, id := range strings.Split(c.AdminRoleIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
