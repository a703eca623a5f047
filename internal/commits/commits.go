// Package commits clusters per-file revisions into logical commits. The
// underlying log is per-file: one logical commit touching five files shows
// up as five revision records sharing an author, a message and a narrow
// time span. Grouping reverses that.
package commits

import (
	"sort"
	"time"

	"github.com/svnscope/svnscope-go/internal/models"
)

// DefaultWindow is the clustering gap: a revision more than this far past a
// commit's newest member opens a new commit.
const DefaultWindow = 5 * time.Minute

// Commit is a derived grouping of revisions sharing author, comment and a
// clustering time window. It references existing revisions; it owns nothing.
type Commit struct {
	anchor    *models.Revision
	revisions []*models.Revision
	latest    time.Time
}

// Date returns the timestamp of the commit's anchor revision.
func (c *Commit) Date() time.Time { return c.anchor.Date() }

// Author returns the shared author, nil if the log recorded none.
func (c *Commit) Author() *models.Author { return c.anchor.Author() }

// Comment returns the shared commit message.
func (c *Commit) Comment() string { return c.anchor.Comment() }

// Revisions returns the member revisions in the order they were added.
func (c *Commit) Revisions() []*models.Revision { return c.revisions }

// AffectedFiles returns the sorted set of file paths the commit touched.
func (c *Commit) AffectedFiles() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, rev := range c.revisions {
		path := rev.File().Path()
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// LinesDelta sums the member revisions' line deltas.
func (c *Commit) LinesDelta() int {
	total := 0
	for _, rev := range c.revisions {
		total += rev.Lines().Delta()
	}
	return total
}

func (c *Commit) add(rev *models.Revision) {
	c.revisions = append(c.revisions, rev)
	if rev.Date().After(c.latest) {
		c.latest = rev.Date()
	}
}

// ListBuilder groups revisions with a single linear scan over the
// chronologically ordered revision set, keeping a list of open commits.
type ListBuilder struct {
	window time.Duration
}

// NewListBuilder creates a builder; a non-positive window falls back to
// DefaultWindow.
func NewListBuilder(window time.Duration) *ListBuilder {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ListBuilder{window: window}
}

// Build returns the commits in the order their anchor revision was first
// encountered. Begin-of-log sentinels carry no authorship and stay out.
func (b *ListBuilder) Build(revisions []*models.Revision) []*Commit {
	chrono := make([]*models.Revision, 0, len(revisions))
	for _, rev := range revisions {
		if rev.Action() == models.ActionBeginOfLog {
			continue
		}
		chrono = append(chrono, rev)
	}
	sort.SliceStable(chrono, func(i, j int) bool {
		a, b := chrono[i], chrono[j]
		if !a.Date().Equal(b.Date()) {
			return a.Date().Before(b.Date())
		}
		return models.RevisionNumberLess(a.Number(), b.Number())
	})

	var commits []*Commit
	var open []*Commit

	for _, rev := range chrono {
		// Commits fall out of the open list once the scan has moved past
		// their window; the window slides with each added member.
		live := open[:0]
		for _, c := range open {
			if rev.Date().Sub(c.latest) <= b.window {
				live = append(live, c)
			}
		}
		open = live

		var target *Commit
		for _, c := range open {
			if b.isSameCommit(c, rev) && b.isInTimeFrame(c, rev) {
				target = c
				break
			}
		}
		if target == nil {
			target = &Commit{anchor: rev, latest: rev.Date()}
			commits = append(commits, target)
			open = append(open, target)
		}
		target.add(rev)
	}
	return commits
}

// isSameCommit compares authors by identity (interned; nil equals only nil)
// and comments by string equality.
func (b *ListBuilder) isSameCommit(c *Commit, rev *models.Revision) bool {
	return c.Author() == rev.Author() && c.Comment() == rev.Comment()
}

// isInTimeFrame measures against the commit's newest member, not its
// anchor, so the effective window slides forward as members arrive.
func (b *ListBuilder) isInTimeFrame(c *Commit, rev *models.Revision) bool {
	gap := rev.Date().Sub(c.latest)
	if gap < 0 {
		gap = -gap
	}
	return gap <= b.window
}
