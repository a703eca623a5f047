package svnlog

import (
	"github.com/sirupsen/logrus"

	"github.com/svnscope/svnscope-go/internal/errors"
	"github.com/svnscope/svnscope-go/internal/models"
)

// RepositoryBuilder applies parser output to a fresh repository model.
type RepositoryBuilder struct {
	repo        *models.Repository
	logger      *logrus.Logger
	module      string
	currentFile string
	tags        map[string]map[string]string
}

// NewRepositoryBuilder creates a builder around an empty repository.
func NewRepositoryBuilder(logger *logrus.Logger) *RepositoryBuilder {
	return &RepositoryBuilder{
		repo:   models.NewRepository(),
		logger: logger,
		tags:   make(map[string]map[string]string),
	}
}

// Repository returns the model under construction.
func (b *RepositoryBuilder) Repository() *models.Repository { return b.repo }

// Module returns the module name announced by the log source.
func (b *RepositoryBuilder) Module() string { return b.module }

// BeginModule records the module the following files belong to.
func (b *RepositoryBuilder) BeginModule(name string) {
	b.module = name
}

// BuildFile announces a file ahead of its revisions. Later BuildRevision
// calls without a path file under this one.
func (b *RepositoryBuilder) BuildFile(path string, isBinary, isInAttic bool, tagsByRevision map[string]string) {
	f := b.repo.File(path)
	if isBinary {
		f.MarkBinary()
	}
	if isInAttic {
		f.MarkInAttic()
	}
	if len(tagsByRevision) > 0 {
		b.tags[f.Path()] = tagsByRevision
	}
	b.currentFile = f.Path()
}

// SymbolicNames returns the tag-by-revision map announced for a path.
func (b *RepositoryBuilder) SymbolicNames(path string) map[string]string {
	return b.tags[models.NormalizePath(path)]
}

// BuildRevision files one record under its path, implicitly creating the
// file and its ancestor directories on first reference.
func (b *RepositoryBuilder) BuildRevision(rec RevisionRecord) error {
	path := rec.Path
	if path == "" {
		path = b.currentFile
	}
	if path == "" {
		return errors.LogSyntaxErrorf("revision %s record has no path and no current file", rec.Revision)
	}

	f := b.repo.File(path)
	if rec.IsDirectory {
		f.MarkDirectoryLike()
	}

	var author *models.Author
	if rec.Author != "" {
		author = b.repo.Author(rec.Author)
	}

	action := b.modelAction(f, rec)
	rev := models.NewRevision(rec.Revision, rec.Date, author, rec.Comment, action)
	if !f.AddRevision(rev) {
		// Well-formed but odd: the same path twice in one revision. Keep the
		// first record, per the explicit-entry-wins policy.
		b.logger.WithFields(logrus.Fields{
			"path":     f.Path(),
			"revision": rec.Revision,
		}).Warn("Duplicate revision record ignored")
	}
	return nil
}

// modelAction maps the raw action letter to a model action. An add on a
// path whose preceding revision is a deletion is a restore, not a creation.
func (b *RepositoryBuilder) modelAction(f *models.VersionedFile, rec RevisionRecord) models.Action {
	switch rec.Action {
	case RecordModified:
		return models.ActionChange
	case RecordDeleted:
		return models.ActionDelete
	default: // RecordAdded, RecordReplaced
		if prev := precedingRevision(f, rec.Revision); prev != nil && prev.Action() == models.ActionDelete {
			return models.ActionRestore
		}
		if rec.Action == RecordReplaced {
			return models.ActionRestore
		}
		return models.ActionInitial
	}
}

// precedingRevision finds the newest revision of f strictly older than the
// given number. Records can arrive in any order, so the latest revision is
// not necessarily the preceding one.
func precedingRevision(f *models.VersionedFile, number string) *models.Revision {
	var prev *models.Revision
	for _, rev := range f.Revisions() {
		if models.RevisionNumberLess(rev.Number(), number) {
			prev = rev
			continue
		}
		break
	}
	return prev
}
