package models

import "fmt"

// Diagnostics accumulates consistency-check findings. Mismatches are never
// fatal: they are counted, recorded and surfaced in the debug dump.
type Diagnostics struct {
	FilesChecked     int      `yaml:"files_checked"`
	LineCountErrors  int      `yaml:"line_count_errors"`
	OrderingErrors   int      `yaml:"ordering_errors"`
	EmptyFileErrors  int      `yaml:"empty_file_errors"`
	UnresolvedDeltas int      `yaml:"unresolved_deltas"`
	Messages         []string `yaml:"messages,omitempty"`
}

// Clean reports whether every check passed.
func (d *Diagnostics) Clean() bool {
	return d.LineCountErrors == 0 && d.OrderingErrors == 0 && d.EmptyFileErrors == 0
}

func (d *Diagnostics) recordf(format string, args ...interface{}) {
	d.Messages = append(d.Messages, fmt.Sprintf(format, args...))
}

// Verify runs the model's consistency checks: every file has at least one
// revision, revisions are strictly ordered with no duplicate numbers, and
// each living non-binary file's current line count equals the sum of its
// revision deltas.
func (r *Repository) Verify() *Diagnostics {
	d := &Diagnostics{}
	for _, f := range r.Files() {
		d.FilesChecked++

		if len(f.revisions) == 0 {
			d.EmptyFileErrors++
			d.recordf("file %s has no revisions", f.path)
			continue
		}

		for i := 1; i < len(f.revisions); i++ {
			prev, cur := f.revisions[i-1], f.revisions[i]
			if !RevisionNumberLess(prev.number, cur.number) {
				d.OrderingErrors++
				d.recordf("file %s: revision %s does not precede %s", f.path, prev.number, cur.number)
			}
		}

		if f.IsBinary() || f.IsDead() || f.IsDirectoryLike() {
			continue
		}
		unresolved := false
		for _, rev := range f.revisions {
			if rev.NeedsLineCounts() {
				unresolved = true
			}
		}
		if unresolved {
			// A skipped diff pair leaves the sum short; not a model error.
			d.UnresolvedDeltas++
			continue
		}
		if sum := f.SumOfDeltas(); sum != f.CurrentLines() {
			d.LineCountErrors++
			d.recordf("file %s: sum of deltas %d != current lines %d", f.path, sum, f.CurrentLines())
		}
	}
	return d
}
