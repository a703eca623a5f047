package storage

import (
	"context"

	"github.com/svnscope/svnscope-go/internal/commits"
	"github.com/svnscope/svnscope-go/internal/stats"
)

// RunSummary is the per-run header row.
type RunSummary struct {
	RunID        string `db:"run_id"`
	Module       string `db:"module"`
	Files        int    `db:"files"`
	Revisions    int    `db:"revisions"`
	Commits      int    `db:"commits"`
	Authors      int    `db:"authors"`
	CurrentLines int    `db:"current_lines"`
}

// Store receives the derived report data. Rendering reads from here; the
// pipeline only writes.
type Store interface {
	SaveRun(ctx context.Context, summary RunSummary) error
	SaveCommits(ctx context.Context, runID string, list []*commits.Commit) error
	SaveAuthorActivity(ctx context.Context, runID string, activity []stats.AuthorActivity) error
	SaveDirectoryActivity(ctx context.Context, runID string, activity []stats.DirectoryActivity) error
	SaveFileChurn(ctx context.Context, runID string, churn []stats.FileChurn) error
	SaveLocSeries(ctx context.Context, runID string, series []stats.LocPoint) error
	Close() error
}
