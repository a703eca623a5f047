// Package pipeline wires the ingestion phases together: fetch and parse the
// log, resolve implicit directory actions, reconcile line counts, group
// commits, derive statistics and hand them to the store. Constructed once
// per run and discarded; nothing here is process-wide state.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/svnscope/svnscope-go/internal/commits"
	"github.com/svnscope/svnscope-go/internal/config"
	"github.com/svnscope/svnscope-go/internal/models"
	"github.com/svnscope/svnscope-go/internal/reconcile"
	"github.com/svnscope/svnscope-go/internal/resolver"
	"github.com/svnscope/svnscope-go/internal/stats"
	"github.com/svnscope/svnscope-go/internal/storage"
	"github.com/svnscope/svnscope-go/internal/svnlog"
)

// LogSource produces the raw revision log.
type LogSource interface {
	FetchLog(ctx context.Context) (io.Reader, error)
}

// Pipeline runs one full ingestion.
type Pipeline struct {
	source   LogSource
	oracle   resolver.ExistenceOracle
	provider reconcile.DiffProvider
	cache    reconcile.DiffCache
	counter  reconcile.LineCounter
	store    storage.Store
	cfg      *config.Config
	logger   *logrus.Logger
}

// Result is what one run produced.
type Result struct {
	RunID       string
	Repository  *models.Repository
	Commits     []*commits.Commit
	Diagnostics *models.Diagnostics
	Resolution  *resolver.Result
	Reconciled  *reconcile.Result
	Duration    time.Duration
}

// New assembles a pipeline. store may be nil to skip the export phase.
func New(
	source LogSource,
	oracle resolver.ExistenceOracle,
	provider reconcile.DiffProvider,
	cache reconcile.DiffCache,
	counter reconcile.LineCounter,
	store storage.Store,
	cfg *config.Config,
	logger *logrus.Logger,
) *Pipeline {
	return &Pipeline{
		source:   source,
		oracle:   oracle,
		provider: provider,
		cache:    cache,
		counter:  counter,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes the full pipeline. Fatal phases (fetching, parsing) abort
// the run; reconciliation faults degrade single statistics and keep going.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.WithField("run_id", runID)

	result := &Result{RunID: runID}

	// Phase 1: fetch + parse the log into the model.
	log.WithField("working_copy", p.cfg.Repository.WorkingCopy).Info("Starting ingestion")
	raw, err := p.source.FetchLog(ctx)
	if err != nil {
		return nil, err
	}

	builder := svnlog.NewRepositoryBuilder(p.logger)
	builder.BeginModule(p.cfg.Repository.Module)
	if err := svnlog.NewParser(p.logger).Parse(raw, builder); err != nil {
		return nil, err
	}
	repo := builder.Repository()
	result.Repository = repo
	log.WithFields(logrus.Fields{
		"files":   repo.FileCount(),
		"authors": len(repo.Authors()),
	}).Info("Log ingested")

	// Phase 2: implicit directory actions.
	result.Resolution = resolver.New(p.oracle, p.logger).Resolve(repo)

	// Phase 3: line-count reconciliation.
	rc := reconcile.New(p.provider, p.cache, p.counter, p.cfg.Reconcile.Workers, p.logger)
	result.Reconciled, err = rc.Run(ctx, repo)
	if err != nil {
		return nil, err
	}

	// Phase 4: commit grouping.
	result.Commits = commits.NewListBuilder(p.cfg.Commits.Window).Build(repo.Revisions())
	log.WithField("commits", len(result.Commits)).Info("Commits grouped")

	// Phase 5: consistency checks. Mismatches are recorded, never thrown.
	result.Diagnostics = repo.Verify()
	if !result.Diagnostics.Clean() {
		log.WithFields(logrus.Fields{
			"line_count_errors": result.Diagnostics.LineCountErrors,
			"ordering_errors":   result.Diagnostics.OrderingErrors,
		}).Warn("Consistency checks found mismatches")
	}

	// Phase 6: derive and export report data.
	if p.store != nil {
		if err := p.export(ctx, result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"duration":  result.Duration.String(),
		"revisions": len(repo.Revisions()),
		"commits":   len(result.Commits),
		"loc":       repo.CurrentLines(),
	}).Info("Ingestion completed")
	return result, nil
}

func (p *Pipeline) export(ctx context.Context, result *Result) error {
	repo := result.Repository
	summary := storage.RunSummary{
		RunID:        result.RunID,
		Module:       p.cfg.Repository.Module,
		Files:        repo.FileCount(),
		Revisions:    len(repo.Revisions()),
		Commits:      len(result.Commits),
		Authors:      len(repo.Authors()),
		CurrentLines: repo.CurrentLines(),
	}
	if err := p.store.SaveRun(ctx, summary); err != nil {
		return err
	}
	if err := p.store.SaveCommits(ctx, result.RunID, result.Commits); err != nil {
		return err
	}
	if err := p.store.SaveAuthorActivity(ctx, result.RunID, stats.Authors(repo, result.Commits)); err != nil {
		return err
	}
	if err := p.store.SaveDirectoryActivity(ctx, result.RunID, stats.Directories(repo)); err != nil {
		return err
	}
	if err := p.store.SaveFileChurn(ctx, result.RunID, stats.Churn(repo)); err != nil {
		return err
	}
	return p.store.SaveLocSeries(ctx, result.RunID, stats.LocOverTime(repo, result.Commits))
}
