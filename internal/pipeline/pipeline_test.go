package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/svnscope/svnscope-go/internal/config"
	svnscopeerrors "github.com/svnscope/svnscope-go/internal/errors"
	"github.com/svnscope/svnscope-go/internal/reconcile"
)

type stringSource struct {
	log string
}

func (s *stringSource) FetchLog(ctx context.Context) (io.Reader, error) {
	return strings.NewReader(s.log), nil
}

type mapOracle struct {
	files map[string]bool
	dirs  map[string]bool
}

func (o *mapOracle) Exists(path string) bool      { return o.files[path] || o.dirs[path] }
func (o *mapOracle) IsDirectory(path string) bool { return o.dirs[path] }

type mapProvider struct {
	results map[string]reconcile.DiffResult
}

func (p *mapProvider) LineDiff(ctx context.Context, oldRev, newRev, path string) (int, int, error) {
	res, ok := p.results[path+"@"+newRev]
	if !ok {
		return 0, 0, errors.New("no diff fixture")
	}
	return res.Added, res.Removed, nil
}

type mapCache struct {
	m map[string]reconcile.DiffResult
}

func (c *mapCache) Get(path, revision string) (reconcile.DiffResult, bool, error) {
	res, ok := c.m[path+"@"+revision]
	return res, ok, nil
}

func (c *mapCache) Put(path, revision string, result reconcile.DiffResult) error {
	c.m[path+"@"+revision] = result
	return nil
}

type mapCounter struct {
	counts map[string]int
}

func (c *mapCounter) CountLines(path string) (int, error) {
	n, ok := c.counts[path]
	if !ok {
		return 0, errors.New("no such file")
	}
	return n, nil
}

const singleFileLog = `<?xml version="1.0"?>
<log>
<logentry revision="1">
<author>alice</author>
<date>2020-03-01T10:00:00.000000Z</date>
<paths><path action="A" kind="file">/main.c</path></paths>
<msg>add empty file</msg>
</logentry>
<logentry revision="2">
<author>alice</author>
<date>2020-03-01T12:00:00.000000Z</date>
<paths><path action="M" kind="file">/main.c</path></paths>
<msg>write it</msg>
</logentry>
</log>
`

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Repository.Module = "demo"
	cfg.Commits.Window = 5 * time.Minute
	cfg.Reconcile.Workers = 2
	return cfg
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestRunEndToEnd(t *testing.T) {
	p := New(
		&stringSource{log: singleFileLog},
		&mapOracle{files: map[string]bool{"main.c": true}, dirs: map[string]bool{}},
		&mapProvider{results: map[string]reconcile.DiffResult{
			"main.c@1": {Added: 0, Removed: 0},
			"main.c@2": {Added: 100, Removed: 0},
		}},
		&mapCache{m: map[string]reconcile.DiffResult{}},
		&mapCounter{counts: map[string]int{"main.c": 100}},
		nil,
		testConfig(),
		testLogger(),
	)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	repo := result.Repository
	f := repo.GetFile("main.c")
	if f == nil {
		t.Fatal("expected main.c in the model")
	}
	if f.CurrentLines() != 100 {
		t.Errorf("expected 100 current lines, got %d", f.CurrentLines())
	}
	if repo.CurrentLines() != 100 {
		t.Errorf("expected repository total 100, got %d", repo.CurrentLines())
	}

	// Both revisions share author and comment windows differ: the two
	// distinct messages two hours apart give two commits.
	if len(result.Commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(result.Commits))
	}
	for i, c := range result.Commits {
		if len(c.Revisions()) != 1 {
			t.Errorf("commit %d: expected 1 revision, got %d", i, len(c.Revisions()))
		}
	}

	if !result.Diagnostics.Clean() {
		t.Errorf("expected clean diagnostics, got %+v", result.Diagnostics)
	}
}

func TestRunSurfacesEmptyRepository(t *testing.T) {
	p := New(
		&stringSource{log: "<log></log>"},
		&mapOracle{files: map[string]bool{}, dirs: map[string]bool{}},
		&mapProvider{},
		&mapCache{m: map[string]reconcile.DiffResult{}},
		&mapCounter{counts: map[string]int{}},
		nil,
		testConfig(),
		testLogger(),
	)

	_, err := p.Run(context.Background())
	if !svnscopeerrors.IsEmptyRepository(err) {
		t.Fatalf("expected empty-repository condition, got %v", err)
	}
}

func TestRunAbortsOnSyntaxError(t *testing.T) {
	p := New(
		&stringSource{log: `<log><logentry revision="1"><paths><path action="M">/f</path></paths></logentry></log>`},
		&mapOracle{files: map[string]bool{}, dirs: map[string]bool{}},
		&mapProvider{},
		&mapCache{m: map[string]reconcile.DiffResult{}},
		&mapCounter{counts: map[string]int{}},
		nil,
		testConfig(),
		testLogger(),
	)

	_, err := p.Run(context.Background())
	if !svnscopeerrors.IsLogSyntax(err) {
		t.Fatalf("expected log-syntax error, got %v", err)
	}
}
