package audit

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const insertEntry = `
	INSERT INTO audit_log (id, username, action, api, api_answer, recorded_at)
	VALUES (:id, :username, :action, :api, :api_answer, :recorded_at)`

// PostgresRecorder stores audit entries in the audit_log table.
type PostgresRecorder struct {
	db *sqlx.DB
}

// NewPostgresRecorder wraps an already connected database handle. The
// handle's lifecycle stays with the caller; Close here is a no-op.
func NewPostgresRecorder(db *sqlx.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Record inserts one entry.
func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	if _, err := r.db.NamedExecContext(ctx, insertEntry, e); err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Close() error { return nil }
