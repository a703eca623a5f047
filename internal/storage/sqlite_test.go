package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svnscope/svnscope-go/internal/stats"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "report.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRunRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	summary := RunSummary{
		RunID:        "run-1",
		Module:       "demo",
		Files:        3,
		Revisions:    9,
		Commits:      4,
		Authors:      2,
		CurrentLines: 120,
	}
	require.NoError(t, s.SaveRun(ctx, summary))

	// Saving again replaces rather than duplicates.
	summary.CurrentLines = 130
	require.NoError(t, s.SaveRun(ctx, summary))

	var got RunSummary
	require.NoError(t, s.db.Get(&got, `SELECT run_id, module, files, revisions, commits, authors, current_lines FROM runs WHERE run_id = ?`, "run-1"))
	assert.Equal(t, summary, got)

	var count int
	require.NoError(t, s.db.Get(&count, `SELECT COUNT(*) FROM runs`))
	assert.Equal(t, 1, count)
}

func TestSaveAuthorActivity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	activity := []stats.AuthorActivity{
		{Name: "alice", Revisions: 5, Commits: 3, LinesAdded: 200, LinesRemoved: 40, FirstActivity: base, LastActivity: base.Add(48 * time.Hour)},
		{Name: "bob", Revisions: 1, Commits: 1, LinesAdded: 10, FirstActivity: base, LastActivity: base},
	}
	require.NoError(t, s.SaveAuthorActivity(ctx, "run-1", activity))

	var count int
	require.NoError(t, s.db.Get(&count, `SELECT COUNT(*) FROM author_activity WHERE run_id = ?`, "run-1"))
	assert.Equal(t, 2, count)

	var added int
	require.NoError(t, s.db.Get(&added, `SELECT lines_added FROM author_activity WHERE run_id = ? AND name = ?`, "run-1", "alice"))
	assert.Equal(t, 200, added)
}

func TestSaveLocSeries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	series := []stats.LocPoint{
		{Date: base, Lines: 100},
		{Date: base.Add(time.Hour), Lines: 80},
		{Date: base.Add(2 * time.Hour), Lines: 120},
	}
	require.NoError(t, s.SaveLocSeries(ctx, "run-1", series))

	var count int
	require.NoError(t, s.db.Get(&count, `SELECT COUNT(*) FROM loc_series WHERE run_id = ?`, "run-1"))
	assert.Equal(t, 3, count)
}
