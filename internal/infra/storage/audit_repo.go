package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jose-valero/discord-interactions/internal/adapters/discord"
	pq "github.com/lib/pq"
)

// AuditEntry es una fila de dispatch_audit tal como se lee.
type AuditEntry struct {
	DispatchID    uuid.UUID
	InteractionID string
	ApplicationID string
	GuildID       string
	UserID        string
	Kind          string
	HandlerKey    string
	State         string
	ResponseState string
	HTTPStatus    int
	Error         string
	Duration      time.Duration
	ReceivedAt    time.Time
}

// AuditRepo guarda una línea por dispatch. Nunca se lee durante un dispatch.
type AuditRepo struct{ db *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

var _ discord.Recorder = (*AuditRepo)(nil)

func (r *AuditRepo) Record(ctx context.Context, rec discord.DispatchRecord) error {
	var kind, resp string
	if rec.Kind != 0 {
		kind = rec.Kind.String()
	}
	if rec.State == discord.StateResponded {
		resp = rec.Response.String()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO dispatch_audit
  (dispatch_id, interaction_id, application_id, guild_id, user_id, kind, handler_key,
   state, response_state, http_status, error, duration_ms, received_at)
VALUES
  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (dispatch_id) DO NOTHING
`, rec.DispatchID, rec.InteractionID, rec.ApplicationID, rec.GuildID, rec.UserID, kind, rec.Key,
		rec.State.String(), resp, rec.Status, rec.Err, rec.Duration.Milliseconds(), rec.ReceivedAt)
	if err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// ListRecent devuelve las últimas filas, filtradas por kind si se pasan.
func (r *AuditRepo) ListRecent(ctx context.Context, kinds []string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if kinds == nil {
		kinds = []string{} // pq manda NULL para un slice nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT dispatch_id, interaction_id, application_id, guild_id, user_id, kind, handler_key,
       state, response_state, http_status, error, duration_ms, received_at
  FROM dispatch_audit
 WHERE cardinality($1::text[]) = 0 OR kind = ANY($1)
 ORDER BY received_at DESC
 LIMIT $2
`, pq.Array(kinds), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ms int64
		if err := rows.Scan(&e.DispatchID, &e.InteractionID, &e.ApplicationID, &e.GuildID, &e.UserID, &e.Kind, &e.HandlerKey,
			&e.State, &e.ResponseState, &e.HTTPStatus, &e.Error, &ms, &e.ReceivedAt); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
