package models

import (
	"strconv"
	"strings"
	"time"
)

// Action is the closed set of things a revision can do to a file.
type Action int

const (
	// ActionInitial - the revision created the file
	ActionInitial Action = iota
	// ActionChange - the revision modified an existing file
	ActionChange
	// ActionDelete - the revision deleted the file
	ActionDelete
	// ActionRestore - the revision re-added a previously deleted file
	ActionRestore
	// ActionBeginOfLog - sentinel for files whose history starts before the
	// logged window; carries the line count at the window start
	ActionBeginOfLog
)

func (a Action) String() string {
	switch a {
	case ActionInitial:
		return "initial"
	case ActionChange:
		return "change"
	case ActionDelete:
		return "delete"
	case ActionRestore:
		return "restore"
	case ActionBeginOfLog:
		return "begin-of-log"
	default:
		return "unknown"
	}
}

// IsAddingOrChanging reports whether the action introduces or keeps content.
func (a Action) IsAddingOrChanging() bool {
	return a == ActionInitial || a == ActionChange || a == ActionRestore
}

// LineState tags the reconciliation state of a revision's line counts.
type LineState int

const (
	// LinesUnresolved - no delta known yet; reconciliation still pending
	LinesUnresolved LineState = iota
	// LinesResolved - added/removed counts are known
	LinesResolved
	// LinesBinary - the file is binary at this revision, no counts exist
	LinesBinary
)

// LineCounts is a tagged value: Added/Removed are meaningful only in the
// LinesResolved state. Reconciliation is the only path from Unresolved to a
// terminal state.
type LineCounts struct {
	State   LineState
	Added   int
	Removed int
}

// ResolvedLines builds a resolved LineCounts value.
func ResolvedLines(added, removed int) LineCounts {
	return LineCounts{State: LinesResolved, Added: added, Removed: removed}
}

// Known reports whether the counts reached a terminal state.
func (lc LineCounts) Known() bool {
	return lc.State != LinesUnresolved
}

// Delta is lines added minus lines removed, zero while unresolved.
func (lc LineCounts) Delta() int {
	if lc.State != LinesResolved {
		return 0
	}
	return lc.Added - lc.Removed
}

// Replaced is the number of lines rewritten in place, min(added, removed).
func (lc LineCounts) Replaced() int {
	if lc.State != LinesResolved {
		return 0
	}
	if lc.Added < lc.Removed {
		return lc.Added
	}
	return lc.Removed
}

// Revision is one recorded action on one file. Created by the parser or the
// implicit-action resolver; line counts are filled in exactly once by
// reconciliation and never mutated afterwards.
type Revision struct {
	file         *VersionedFile
	number       string
	date         time.Time
	author       *Author
	comment      string
	action       Action
	lines        LineCounts
	initialLines int
	synthetic    bool
}

// NewRevision creates a revision record. The file back-reference is set when
// the revision is added to a file.
func NewRevision(number string, date time.Time, author *Author, comment string, action Action) *Revision {
	return &Revision{
		number:  number,
		date:    date,
		author:  author,
		comment: comment,
		action:  action,
	}
}

// SyntheticCopy returns a copy of the revision carrying the same number,
// date, author, comment and action, flagged as inferred rather than logged.
func (r *Revision) SyntheticCopy() *Revision {
	return &Revision{
		number:    r.number,
		date:      r.date,
		author:    r.author,
		comment:   r.comment,
		action:    r.action,
		synthetic: true,
	}
}

// File returns the owning file.
func (r *Revision) File() *VersionedFile { return r.file }

// Number returns the revision identifier.
func (r *Revision) Number() string { return r.number }

// Date returns the revision timestamp.
func (r *Revision) Date() time.Time { return r.date }

// Author returns the revision author, nil for the begin-of-log sentinel.
func (r *Revision) Author() *Author { return r.author }

// Comment returns the commit message.
func (r *Revision) Comment() string { return r.comment }

// Action returns the revision's action kind.
func (r *Revision) Action() Action { return r.action }

// Lines returns the tagged line counts.
func (r *Revision) Lines() LineCounts { return r.lines }

// InitialLines is the window-start line count; meaningful only for the
// begin-of-log sentinel.
func (r *Revision) InitialLines() int { return r.initialLines }

// IsSynthetic reports whether the revision was inferred by the resolver
// rather than read from the log.
func (r *Revision) IsSynthetic() bool { return r.synthetic }

// NeedsLineCounts reports whether reconciliation still owes this revision a
// delta. Deletions and sentinels never get one.
func (r *Revision) NeedsLineCounts() bool {
	return r.lines.State == LinesUnresolved &&
		r.action != ActionDelete && r.action != ActionBeginOfLog
}

// ResolveLines records the diffed counts. Only the first call takes effect;
// a revision never leaves a terminal state.
func (r *Revision) ResolveLines(added, removed int) {
	if r.lines.State != LinesUnresolved {
		return
	}
	r.lines = ResolvedLines(added, removed)
}

// MarkLinesBinary moves the revision to the binary terminal state.
func (r *Revision) MarkLinesBinary() {
	if r.lines.State != LinesUnresolved {
		return
	}
	r.lines = LineCounts{State: LinesBinary}
}

// LinesDelta is the revision's contribution to the file's line count,
// including the sentinel's window-start lines.
func (r *Revision) LinesDelta() int {
	if r.action == ActionBeginOfLog {
		return r.initialLines
	}
	return r.lines.Delta()
}

// RevisionNumberLess orders revision identifiers numerically per
// dot-separated segment, so "10" > "9" and "1.10" > "1.9". Non-numeric
// segments fall back to lexical comparison.
func RevisionNumberLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if an != bn {
				return an < bn
			}
		default:
			if as[i] != bs[i] {
				return as[i] < bs[i]
			}
		}
	}
	return len(as) < len(bs)
}
