package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Registry reads the control-plane `site` table.
type Registry struct {
	db *sqlx.DB
}

func NewRegistry(db *sqlx.DB) *Registry { return &Registry{db: db} }

// AllActive returns every site that is neither suspended nor deleted,
// ordered by host.
func (r *Registry) AllActive(ctx context.Context) ([]Record, error) {
	const q = `
        SELECT id, host, theme, title, suspended_at, deleted_at,
               created_at, updated_at
        FROM   site
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL
        ORDER  BY host`
	var rows []Record
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("select active sites: %w", err)
	}
	return rows, nil
}

// ByHost fetches a single active site row.  A missing row returns
// (nil, nil).
func (r *Registry) ByHost(ctx context.Context, host string) (*Record, error) {
	const q = `
        SELECT id, host, theme, title, suspended_at, deleted_at,
               created_at, updated_at
        FROM   site
        WHERE  host = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1`
	var rec Record
	err := r.db.GetContext(ctx, &rec, q, host)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select site %s: %w", host, err)
	}
	return &rec, nil
}
