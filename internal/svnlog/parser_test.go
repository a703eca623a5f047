package svnlog

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/svnscope/svnscope-go/internal/errors"
	"github.com/svnscope/svnscope-go/internal/models"
)

const sampleLog = `<?xml version="1.0" encoding="UTF-8"?>
<log>
<logentry revision="1">
<author>alice</author>
<date>2020-03-01T10:00:00.000000Z</date>
<paths>
<path action="A" kind="dir">/trunk</path>
<path action="A" kind="file">/trunk/main.c</path>
</paths>
<msg>initial import</msg>
</logentry>
<logentry revision="2">
<author>bob</author>
<date>2020-03-02T11:30:00.000000Z</date>
<paths>
<path action="M" kind="file">/trunk/main.c</path>
</paths>
<msg>fix build</msg>
</logentry>
<logentry revision="3">
<author>alice</author>
<date>2020-03-03T09:00:00.000000Z</date>
<paths>
<path action="D" kind="file">/trunk/main.c</path>
</paths>
<msg>drop main</msg>
</logentry>
<logentry revision="4">
<author>alice</author>
<date>2020-03-04T09:00:00.000000Z</date>
<paths>
<path action="A" kind="file">/trunk/main.c</path>
</paths>
<msg>bring it back</msg>
</logentry>
</log>
`

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func parseSample(t *testing.T, log string) *RepositoryBuilder {
	t.Helper()
	builder := NewRepositoryBuilder(newTestLogger())
	if err := NewParser(newTestLogger()).Parse(strings.NewReader(log), builder); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return builder
}

func TestParseBuildsModel(t *testing.T) {
	builder := parseSample(t, sampleLog)
	repo := builder.Repository()

	f := repo.GetFile("trunk/main.c")
	if f == nil {
		t.Fatal("expected trunk/main.c in the model")
	}

	revs := f.Revisions()
	if len(revs) != 4 {
		t.Fatalf("expected 4 revisions, got %d", len(revs))
	}

	wantActions := []models.Action{
		models.ActionInitial,
		models.ActionChange,
		models.ActionDelete,
		models.ActionRestore,
	}
	for i, want := range wantActions {
		if revs[i].Action() != want {
			t.Errorf("revision %s: expected %v, got %v", revs[i].Number(), want, revs[i].Action())
		}
	}

	if revs[0].Author().Name() != "alice" {
		t.Errorf("expected author alice, got %s", revs[0].Author())
	}
	if revs[1].Comment() != "fix build" {
		t.Errorf("expected comment 'fix build', got %q", revs[1].Comment())
	}

	dir := repo.GetFile("trunk")
	if dir == nil || !dir.IsDirectoryLike() {
		t.Error("expected trunk to be recorded as directory-like")
	}
}

func TestParseRestoreRequiresPrecedingDelete(t *testing.T) {
	builder := parseSample(t, sampleLog)
	f := builder.Repository().GetFile("trunk/main.c")

	if f.Revisions()[0].Action() != models.ActionInitial {
		t.Error("first add must be a creation, not a restore")
	}
	if f.Revisions()[3].Action() != models.ActionRestore {
		t.Error("add after delete must be a restore")
	}
}

func TestParseEmptyLogIsDistinctCondition(t *testing.T) {
	builder := NewRepositoryBuilder(newTestLogger())
	err := NewParser(newTestLogger()).Parse(strings.NewReader("<log>\n</log>\n"), builder)

	if !errors.IsEmptyRepository(err) {
		t.Fatalf("expected empty-repository condition, got %v", err)
	}
	if errors.IsLogSyntax(err) {
		t.Error("empty repository must not be reported as a syntax error")
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		log  string
	}{
		{
			"missing date",
			`<log><logentry revision="1"><author>a</author><paths><path action="M">/f</path></paths><msg>m</msg></logentry></log>`,
		},
		{
			"bad date",
			`<log><logentry revision="1"><date>yesterday</date><paths><path action="M">/f</path></paths></logentry></log>`,
		},
		{
			"unknown action",
			`<log><logentry revision="1"><date>2020-03-01T10:00:00.000000Z</date><paths><path action="X">/f</path></paths></logentry></log>`,
		},
		{
			"truncated xml",
			`<log><logentry revision="1"><date>2020-03-01T10:00:00.000000Z</date>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewRepositoryBuilder(newTestLogger())
			err := NewParser(newTestLogger()).Parse(strings.NewReader(tt.log), builder)
			if !errors.IsLogSyntax(err) {
				t.Errorf("expected log-syntax error, got %v", err)
			}
		})
	}
}

func TestParseMissingRevisionNumber(t *testing.T) {
	log := `<log><logentry><date>2020-03-01T10:00:00.000000Z</date><paths><path action="M">/f</path></paths></logentry></log>`
	builder := NewRepositoryBuilder(newTestLogger())
	err := NewParser(newTestLogger()).Parse(strings.NewReader(log), builder)
	if !errors.IsLogSyntax(err) {
		t.Fatalf("expected log-syntax error, got %v", err)
	}
}

func TestBuildRevisionUsesCurrentFile(t *testing.T) {
	builder := NewRepositoryBuilder(newTestLogger())
	builder.BuildFile("lib/util.c", false, false, nil)

	rec := RevisionRecord{
		Revision: "7",
		Date:     mustDate(t, "2020-03-05T08:00:00.000000Z"),
		Author:   "carol",
		Comment:  "tweak",
		Action:   RecordModified,
	}
	if err := builder.BuildRevision(rec); err != nil {
		t.Fatalf("BuildRevision failed: %v", err)
	}

	f := builder.Repository().GetFile("lib/util.c")
	if f == nil || len(f.Revisions()) != 1 {
		t.Fatal("expected the record to file under the current file")
	}
}

func TestBuildRevisionWithoutAnyPathFails(t *testing.T) {
	builder := NewRepositoryBuilder(newTestLogger())
	err := builder.BuildRevision(RevisionRecord{
		Revision: "7",
		Date:     mustDate(t, "2020-03-05T08:00:00.000000Z"),
		Action:   RecordModified,
	})
	if !errors.IsLogSyntax(err) {
		t.Fatalf("expected log-syntax error, got %v", err)
	}
}

func TestBuildFileFlags(t *testing.T) {
	builder := NewRepositoryBuilder(newTestLogger())
	builder.BuildFile("img/logo.png", true, true, map[string]string{"3": "RELEASE_1"})

	f := builder.Repository().GetFile("img/logo.png")
	if !f.IsBinary() {
		t.Error("expected binary flag")
	}
	if !f.IsInAttic() {
		t.Error("expected attic flag")
	}
	if builder.SymbolicNames("img/logo.png")["3"] != "RELEASE_1" {
		t.Error("expected symbolic name to be recorded")
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}
