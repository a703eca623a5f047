package svnlog

import "time"

// RecordAction is the raw action letter of a log entry path.
type RecordAction int

const (
	// RecordAdded - path appeared in this revision ("A")
	RecordAdded RecordAction = iota
	// RecordModified - path content changed ("M")
	RecordModified
	// RecordDeleted - path removed ("D")
	RecordDeleted
	// RecordReplaced - path deleted and re-added in one revision ("R")
	RecordReplaced
)

func (a RecordAction) String() string {
	switch a {
	case RecordAdded:
		return "A"
	case RecordModified:
		return "M"
	case RecordDeleted:
		return "D"
	case RecordReplaced:
		return "R"
	default:
		return "?"
	}
}

// RevisionRecord is one line of the raw log: a single action on a single
// path in a single revision. Line counts are unknown at parse time; they
// arrive later through reconciliation.
type RevisionRecord struct {
	Path        string
	Revision    string
	Date        time.Time
	Author      string
	Comment     string
	Action      RecordAction
	IsDirectory bool
	CopyFrom    string
	CopyFromRev string
}

// Builder receives the parser's output. BuildRevision may be called in any
// order across files; a record without a path files under the most recent
// BuildFile path. A record for a never-seen path implicitly creates the file
// and its ancestor directories.
type Builder interface {
	BeginModule(name string)
	BuildFile(path string, isBinary, isInAttic bool, tagsByRevision map[string]string)
	BuildRevision(rec RevisionRecord) error
}
