// Package reconcile merges per-revision line deltas into the model. Deltas
// come from an external diff provider, one high-latency subprocess call per
// revision pair, so lookups fan out across a bounded worker pool and results
// land in a persistent cache keyed by (path, revision).
package reconcile

import (
	"context"
	goerrors "errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/svnscope/svnscope-go/internal/models"
)

// ErrBinaryFile is returned by a DiffProvider when the file is binary at
// the requested revision. A control signal, not a failure.
var ErrBinaryFile = goerrors.New("binary file")

// DiffResult is the cached shape of one diff lookup.
type DiffResult struct {
	Added   int  `json:"added"`
	Removed int  `json:"removed"`
	Binary  bool `json:"binary"`
}

// DiffProvider computes added/removed line counts between two revisions of
// a file. Returns ErrBinaryFile for binary content.
type DiffProvider interface {
	LineDiff(ctx context.Context, oldRev, newRev, path string) (added, removed int, err error)
}

// DiffCache persists diff results across runs, keyed by (path, revision).
type DiffCache interface {
	Get(path, revision string) (DiffResult, bool, error)
	Put(path, revision string, result DiffResult) error
}

// LineCounter counts the current lines of a working-copy file.
type LineCounter interface {
	CountLines(path string) (int, error)
}

// Result summarizes a reconciliation run.
type Result struct {
	FilesProcessed int64
	CacheHits      int64
	Fetched        int64
	BinaryFiles    int64
	SkippedPairs   int64
}

// Reconciler fills in the model's unresolved line counts.
type Reconciler struct {
	provider DiffProvider
	cache    DiffCache
	counter  LineCounter
	logger   *logrus.Logger
	workers  int

	keys keyedMutex
}

// New creates a reconciler; workers <= 0 means 8.
func New(provider DiffProvider, cache DiffCache, counter LineCounter, workers int, logger *logrus.Logger) *Reconciler {
	if workers <= 0 {
		workers = 8
	}
	return &Reconciler{
		provider: provider,
		cache:    cache,
		counter:  counter,
		logger:   logger,
		workers:  workers,
	}
}

// Run reconciles every non-binary file. Files are independent, so each one
// is handled by one pooled worker; the final model does not depend on the
// order results return, because each result only fills its own revision's
// previously unresolved counts.
func (rc *Reconciler) Run(ctx context.Context, repo *models.Repository) (*Result, error) {
	result := &Result{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.workers)

	for _, f := range repo.Files() {
		if f.IsBinary() || f.IsDirectoryLike() {
			continue
		}
		f := f
		g.Go(func() error {
			rc.reconcileFile(ctx, f, result)
			atomic.AddInt64(&result.FilesProcessed, 1)
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	repo.SealLineCounts()

	rc.logger.WithFields(logrus.Fields{
		"files":   result.FilesProcessed,
		"hits":    result.CacheHits,
		"fetched": result.Fetched,
		"binary":  result.BinaryFiles,
		"skipped": result.SkippedPairs,
	}).Info("Line counts reconciled")
	return result, nil
}

// reconcileFile walks the file's revisions newest first so a binary signal
// short-circuits every older not-yet-reconciled pair. One failed diff only
// loses that pair's delta.
func (rc *Reconciler) reconcileFile(ctx context.Context, f *models.VersionedFile, result *Result) {
	revs := f.Revisions()
	for i := len(revs) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return
		}
		newer := revs[i]
		if !newer.NeedsLineCounts() {
			continue
		}

		oldRev, ok := rc.olderRevisionNumber(revs, i)
		if !ok {
			atomic.AddInt64(&result.SkippedPairs, 1)
			continue
		}

		res, err := rc.lookup(ctx, f.Path(), oldRev, newer.Number(), result)
		switch {
		case err == nil && res.Binary:
			f.MarkBinary()
			newer.MarkLinesBinary()
			atomic.AddInt64(&result.BinaryFiles, 1)
			return
		case err == nil:
			newer.ResolveLines(res.Added, res.Removed)
		default:
			rc.logger.WithError(err).WithFields(logrus.Fields{
				"path":     f.Path(),
				"revision": newer.Number(),
			}).Warn("Diff lookup failed, delta stays unknown")
			atomic.AddInt64(&result.SkippedPairs, 1)
		}
	}

	rc.anchorCurrentLines(f)
}

// olderRevisionNumber picks the old side of the diff pair. The preceding
// file revision is used unless it is a deletion; a file's first creation or
// restore diffs against the repository revision just before it, where the
// file was empty.
func (rc *Reconciler) olderRevisionNumber(revs []*models.Revision, i int) (string, bool) {
	newer := revs[i]
	if i > 0 {
		older := revs[i-1]
		if older.Action() == models.ActionDelete || older.Action() == models.ActionBeginOfLog {
			return decrementRevision(newer.Number())
		}
		return older.Number(), true
	}
	if newer.Action() == models.ActionInitial || newer.Action() == models.ActionRestore {
		return decrementRevision(newer.Number())
	}
	return "", false
}

func decrementRevision(number string) (string, bool) {
	n, err := strconv.Atoi(number)
	if err != nil || n < 1 {
		return "", false
	}
	return strconv.Itoa(n - 1), true
}

// lookup serializes check-cache / call-provider / write-cache per key;
// different keys proceed fully in parallel.
func (rc *Reconciler) lookup(ctx context.Context, path, oldRev, newRev string, result *Result) (DiffResult, error) {
	key := path + "@" + newRev
	unlock := rc.keys.lock(key)
	defer unlock()

	if res, ok, err := rc.cache.Get(path, newRev); err != nil {
		rc.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	} else if ok {
		atomic.AddInt64(&result.CacheHits, 1)
		return res, nil
	}

	added, removed, err := rc.provider.LineDiff(ctx, oldRev, newRev, path)
	var res DiffResult
	switch {
	case goerrors.Is(err, ErrBinaryFile):
		res = DiffResult{Binary: true}
	case err != nil:
		return DiffResult{}, fmt.Errorf("diff %s r%s:%s: %w", path, oldRev, newRev, err)
	default:
		res = DiffResult{Added: added, Removed: removed}
	}
	atomic.AddInt64(&result.Fetched, 1)

	if err := rc.cache.Put(path, newRev, res); err != nil {
		rc.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return res, nil
}

// anchorCurrentLines records the working-copy line count that the sum of
// deltas is checked against.
func (rc *Reconciler) anchorCurrentLines(f *models.VersionedFile) {
	if f.IsDead() || f.IsBinary() || f.IsDirectoryLike() {
		return
	}
	n, err := rc.counter.CountLines(f.Path())
	if err != nil {
		rc.logger.WithError(err).WithField("path", f.Path()).Warn("Line count failed")
		return
	}
	f.SetCurrentLines(n)
}

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}
