package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cmdtree/internal/manager"
)

// Record is a stored reload report. Seq orders records by when they were
// recorded.
type Record struct {
	Seq int64 `json:"seq"`
	manager.Report
}

// Reloads returns the most recent limit reloads of namespace, oldest first.
// An empty namespace matches every namespace; limit <= 0 returns all.
//
// Query ordering: ORDER BY seq ASC for deterministic results.
func (s *Store) Reloads(ctx context.Context, namespace string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, cycle_id, namespace, source, digest, status, error, registered, applied_at
		FROM (
			SELECT * FROM reloads
			WHERE ? = '' OR namespace = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, namespace, namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("query reloads: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reloads: %w", err)
	}

	for i := range records {
		skipped, err := s.skipped(ctx, records[i].Seq)
		if err != nil {
			return nil, err
		}
		records[i].Skipped = skipped
	}
	return records, nil
}

// LastDigest returns the digest of the namespace's latest applied reload.
// The boolean is false when there is none.
func (s *Store) LastDigest(ctx context.Context, namespace string) (string, bool, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, `
		SELECT digest FROM reloads
		WHERE namespace = ? AND status = ?
		ORDER BY seq DESC
		LIMIT 1
	`, namespace, manager.StatusApplied).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("last digest: %w", err)
	}
	return digest, true, nil
}

func (s *Store) skipped(ctx context.Context, seq int64) ([]manager.SkippedCommand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, error FROM skipped_commands
		WHERE reload_seq = ?
		ORDER BY name ASC
	`, seq)
	if err != nil {
		return nil, fmt.Errorf("query skipped commands: %w", err)
	}
	defer rows.Close()

	var out []manager.SkippedCommand
	for rows.Next() {
		var sk manager.SkippedCommand
		if err := rows.Scan(&sk.Name, &sk.Error); err != nil {
			return nil, fmt.Errorf("scan skipped command: %w", err)
		}
		out = append(out, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skipped commands: %w", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec        Record
		registered string
		appliedAt  string
	)
	if err := rows.Scan(
		&rec.Seq,
		&rec.CycleID,
		&rec.Namespace,
		&rec.Source,
		&rec.Digest,
		&rec.Status,
		&rec.Error,
		&registered,
		&appliedAt,
	); err != nil {
		return Record{}, fmt.Errorf("scan reload: %w", err)
	}

	names, err := unmarshalNames(registered)
	if err != nil {
		return Record{}, err
	}
	rec.Registered = names

	t, err := unmarshalTime(appliedAt)
	if err != nil {
		return Record{}, err
	}
	rec.AppliedAt = t
	return rec, nil
}
