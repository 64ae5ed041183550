package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtree/internal/manager"
	"github.com/roach88/cmdtree/internal/store"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	reports := []manager.Report{
		{CycleID: "c1", Namespace: "game", Status: manager.StatusApplied, Digest: "d1", Registered: []string{"heal"}, AppliedAt: at},
		{CycleID: "c2", Namespace: "other", Status: manager.StatusNoDocument, Registered: []string{}, AppliedAt: at.Add(time.Minute)},
		{
			CycleID:    "c3",
			Namespace:  "game",
			Status:     manager.StatusApplied,
			Digest:     "d3",
			Registered: []string{"heal"},
			Skipped:    []manager.SkippedCommand{{Name: "bad", Error: "[E201] game:bad: argument type game:nothing"}},
			AppliedAt:  at.Add(2 * time.Minute),
		},
	}
	for _, r := range reports {
		require.NoError(t, st.RecordReload(context.Background(), r))
	}
	return path
}

func TestHistoryText(t *testing.T) {
	db := seedHistory(t)

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "[1] 2026-01-02T03:04:05Z game applied: 1 registered, 0 skipped")
	assert.Contains(t, out, "[2] 2026-01-02T03:05:05Z other no_document: 0 registered, 0 skipped")
	assert.Contains(t, out, "skipped bad: [E201]")
	assert.Contains(t, out, "Reloads:          3")
	assert.Contains(t, out, "Applied:          2")
	assert.Contains(t, out, "Skipped commands: 1")
	assert.NotContains(t, out, "cycle:")

	out, err = execute(t, "history", "--db", db, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "cycle: c3")
}

func TestHistoryFilterAndLimit(t *testing.T) {
	db := seedHistory(t)

	out, err := execute(t, "history", "--format", "json", "--db", db, "-n", "game", "--limit", "1")
	require.NoError(t, err)

	resp := decode[HistoryResult](t, out)
	require.Len(t, resp.Data.Reloads, 1)
	assert.Equal(t, "c3", resp.Data.Reloads[0].CycleID)
	assert.Equal(t, int64(3), resp.Data.Reloads[0].Seq)
	assert.Equal(t, 1, resp.Data.Stats.Skipped)
}

func TestHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "(no reloads recorded)")
}

func TestHistoryRequiresDatabase(t *testing.T) {
	out, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeHistory)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}
