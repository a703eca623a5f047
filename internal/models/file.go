package models

import (
	"sort"
	"strings"
)

// VersionedFile is one file's full recorded history. A file is created the
// first time any revision references its path and is never destroyed; files
// gone from the working copy stay in the model flagged dead.
type VersionedFile struct {
	path          string
	dir           *Directory
	revisions     []*Revision
	binary        bool
	inAttic       bool
	directoryLike bool
	currentLines  int
	linesKnown    bool
}

// Path returns the normalized slash-separated path including the filename.
func (f *VersionedFile) Path() string { return f.path }

// Filename returns the last path segment.
func (f *VersionedFile) Filename() string {
	if i := strings.LastIndexByte(f.path, '/'); i >= 0 {
		return f.path[i+1:]
	}
	return f.path
}

// Directory returns the owning directory.
func (f *VersionedFile) Directory() *Directory { return f.dir }

// Revisions returns the file's revisions ordered by revision number.
func (f *VersionedFile) Revisions() []*Revision { return f.revisions }

// EarliestRevision returns the first revision, nil when the file has none
// yet (a state that must not survive ingestion).
func (f *VersionedFile) EarliestRevision() *Revision {
	if len(f.revisions) == 0 {
		return nil
	}
	return f.revisions[0]
}

// LatestRevision returns the newest revision.
func (f *VersionedFile) LatestRevision() *Revision {
	if len(f.revisions) == 0 {
		return nil
	}
	return f.revisions[len(f.revisions)-1]
}

// HasRevisionAt reports whether an explicit or synthetic revision already
// exists with the given number.
func (f *VersionedFile) HasRevisionAt(number string) bool {
	i := f.searchRevision(number)
	return i < len(f.revisions) && f.revisions[i].number == number
}

// searchRevision returns the index of the first revision whose number is
// >= the given number.
func (f *VersionedFile) searchRevision(number string) int {
	return sort.Search(len(f.revisions), func(i int) bool {
		return !RevisionNumberLess(f.revisions[i].number, number)
	})
}

// AddRevision inserts the revision into the ordered set, keeping revisions
// sorted by number. Returns false without inserting when a revision with
// the same number is already present.
func (f *VersionedFile) AddRevision(rev *Revision) bool {
	i := f.searchRevision(rev.number)
	if i < len(f.revisions) && f.revisions[i].number == rev.number {
		return false
	}
	rev.file = f
	f.revisions = append(f.revisions, nil)
	copy(f.revisions[i+1:], f.revisions[i:])
	f.revisions[i] = rev
	return true
}

// RemoveRevisionsBefore drops all revisions preceding index i. Used only by
// the resolver's cleanup pass to discard spurious inferred lead-in history.
func (f *VersionedFile) RemoveRevisionsBefore(i int) {
	if i <= 0 || i > len(f.revisions) {
		return
	}
	f.revisions = append([]*Revision(nil), f.revisions[i:]...)
}

// IsBinary reports whether the file carries no meaningful line counts.
func (f *VersionedFile) IsBinary() bool { return f.binary }

// MarkBinary flips the binary flag; set by the parser or by the diff
// provider discovering binary content mid-reconciliation.
func (f *VersionedFile) MarkBinary() { f.binary = true }

// IsInAttic reports whether the file is absent from the working copy.
func (f *VersionedFile) IsInAttic() bool { return f.inAttic }

// MarkInAttic records that the working copy no longer has this file.
func (f *VersionedFile) MarkInAttic() { f.inAttic = true }

// IsDead reports a file deleted at its latest revision or gone from the
// working copy.
func (f *VersionedFile) IsDead() bool {
	if f.inAttic {
		return true
	}
	latest := f.LatestRevision()
	return latest != nil && latest.action == ActionDelete
}

// IsDirectoryLike reports a path the resolver determined to act as a
// directory, even if the log never typed it so.
func (f *VersionedFile) IsDirectoryLike() bool { return f.directoryLike }

// MarkDirectoryLike records that other files nest under this path.
func (f *VersionedFile) MarkDirectoryLike() { f.directoryLike = true }

// CurrentLines returns the file's current line count, zero for dead or
// binary files.
func (f *VersionedFile) CurrentLines() int {
	if f.IsDead() || f.binary {
		return 0
	}
	return f.currentLines
}

// HasCurrentLines reports whether a working-copy line count was recorded.
func (f *VersionedFile) HasCurrentLines() bool { return f.linesKnown }

// SetCurrentLines records the working-copy line count.
func (f *VersionedFile) SetCurrentLines(n int) {
	f.currentLines = n
	f.linesKnown = true
}

// SumOfDeltas adds up every revision's contribution, including the
// begin-of-log sentinel's window-start lines.
func (f *VersionedFile) SumOfDeltas() int {
	sum := 0
	for _, rev := range f.revisions {
		sum += rev.LinesDelta()
	}
	return sum
}
