package store

import (
	"context"
	"fmt"

	"github.com/roach88/cmdtree/internal/manager"
)

// RecordReload appends a reload report and its skipped commands.
// Uses ON CONFLICT(cycle_id) DO NOTHING for idempotency - recording the same
// cycle twice is silently ignored.
func (s *Store) RecordReload(ctx context.Context, r manager.Report) error {
	registered, err := marshalNames(r.Registered)
	if err != nil {
		return fmt.Errorf("record reload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record reload: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO reloads
		(cycle_id, namespace, source, digest, status, error, registered, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cycle_id) DO NOTHING
	`,
		r.CycleID,
		r.Namespace,
		r.Source,
		r.Digest,
		r.Status,
		r.Error,
		registered,
		marshalTime(r.AppliedAt),
	)
	if err != nil {
		return fmt.Errorf("record reload: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record reload: %w", err)
	}
	if n == 0 {
		return nil
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record reload: %w", err)
	}

	for _, sk := range r.Skipped {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO skipped_commands (reload_seq, name, error)
			VALUES (?, ?, ?)
			ON CONFLICT(reload_seq, name) DO NOTHING
		`, seq, sk.Name, sk.Error); err != nil {
			return fmt.Errorf("record skipped command %q: %w", sk.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record reload: %w", err)
	}
	return nil
}
