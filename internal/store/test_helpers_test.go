package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/cmdtree/internal/manager"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// createTestReport creates an applied report with one registered command
// and the given skipped command names.
func createTestReport(cycleID, namespace string, skipped ...string) manager.Report {
	r := manager.Report{
		CycleID:    cycleID,
		Namespace:  namespace,
		Source:     "memory:" + namespace,
		Digest:     "digest-" + cycleID,
		Status:     manager.StatusApplied,
		Registered: []string{"ping"},
		AppliedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	for _, name := range skipped {
		r.Skipped = append(r.Skipped, manager.SkippedCommand{Name: name, Error: "[E201] " + name + ": unknown type"})
	}
	return r
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
