// Lambda programada que poda el audit log de dispatches.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jose-valero/discord-interactions/internal/infra/config"
	"github.com/jose-valero/discord-interactions/internal/infra/logging"
)

func handler(ctx context.Context) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Sprintf("config: %v", err), nil
	}
	log := logging.New(cfg.LogLevel, "json")
	if cfg.DatabaseURL == "" {
		return "no DATABASE_URL", nil
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}
	pcfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cfg.AuditRetention)
	tag, err := pool.Exec(cctx, `DELETE FROM dispatch_audit WHERE received_at < $1`, cutoff)
	if err != nil {
		log.Error("janitor: prune", "err", err)
		return fmt.Sprintf("prune: %v", err), nil
	}
	log.Info("janitor: pruned", "rows", tag.RowsAffected(), "cutoff", cutoff)
	return "ok", nil
}

func main() { lambda.Start(handler) }
