package models

import (
	"sort"
	"strings"
)

// Repository is the aggregate root of the reconstructed history: the
// directory tree, every file ever seen in the log, the interned authors and
// the revision set across all files. Built once by the ingestion pipeline,
// then treated as read-only by consumers.
type Repository struct {
	root    *Directory
	files   map[string]*VersionedFile
	authors map[string]*Author
}

// NewRepository creates an empty repository with just the root directory.
func NewRepository() *Repository {
	return &Repository{
		root:    newRootDirectory(),
		files:   make(map[string]*VersionedFile),
		authors: make(map[string]*Author),
	}
}

// Root returns the directory tree root.
func (r *Repository) Root() *Directory { return r.root }

// Author interns a contributor by login name: the same name always returns
// the same instance.
func (r *Repository) Author(name string) *Author {
	if a, ok := r.authors[name]; ok {
		return a
	}
	a := &Author{name: name}
	r.authors[name] = a
	return a
}

// Authors returns all interned authors sorted by name.
func (r *Repository) Authors() []*Author {
	names := make([]string, 0, len(r.authors))
	for name := range r.authors {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Author, len(names))
	for i, name := range names {
		out[i] = r.authors[name]
	}
	return out
}

// NormalizePath converts backslashes to forward slashes and trims a leading
// slash, the canonical form files are keyed by.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimPrefix(path, "/")
}

// GetFile returns the file at the normalized path, nil if unknown.
func (r *Repository) GetFile(path string) *VersionedFile {
	return r.files[NormalizePath(path)]
}

// File returns the file at the path, creating it and every missing ancestor
// directory on first reference.
func (r *Repository) File(path string) *VersionedFile {
	norm := NormalizePath(path)
	if f, ok := r.files[norm]; ok {
		return f
	}

	dir := r.root
	segments := strings.Split(norm, "/")
	for _, segment := range segments[:len(segments)-1] {
		dir = dir.CreateSubdirectory(segment)
	}

	f := &VersionedFile{path: norm, dir: dir}
	dir.addFile(f)
	r.files[norm] = f
	return f
}

// Files returns all files sorted by path.
func (r *Repository) Files() []*VersionedFile {
	paths := make([]string, 0, len(r.files))
	for path := range r.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	out := make([]*VersionedFile, len(paths))
	for i, path := range paths {
		out[i] = r.files[path]
	}
	return out
}

// FileCount returns the number of files ever seen.
func (r *Repository) FileCount() int { return len(r.files) }

// Revisions returns every revision of every file, ordered by revision
// number, then timestamp, then file path.
func (r *Repository) Revisions() []*Revision {
	var revs []*Revision
	for _, f := range r.files {
		revs = append(revs, f.revisions...)
	}
	sort.SliceStable(revs, func(i, j int) bool {
		a, b := revs[i], revs[j]
		if a.number != b.number {
			return RevisionNumberLess(a.number, b.number)
		}
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		return a.file.path < b.file.path
	})
	return revs
}

// CurrentLines sums the line counts of all living files.
func (r *Repository) CurrentLines() int {
	return r.root.CurrentLines()
}

// SealLineCounts finishes the model after reconciliation: files whose
// earliest logged revision is a plain change get a begin-of-log sentinel
// carrying the line count the file must have had when the logged window
// started, so per-file deltas add up.
func (r *Repository) SealLineCounts() {
	for _, f := range r.files {
		earliest := f.EarliestRevision()
		if earliest == nil || earliest.action != ActionChange {
			continue
		}
		initial := f.CurrentLines() - f.SumOfDeltas()
		if initial < 0 {
			initial = 0
		}
		sentinel := &Revision{
			number:       "0",
			date:         earliest.date,
			action:       ActionBeginOfLog,
			initialLines: initial,
			lines:        LineCounts{State: LinesResolved},
		}
		f.AddRevision(sentinel)
	}
}
