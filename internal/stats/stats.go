// Package stats derives report-ready numbers from the reconstructed model:
// per-author activity, per-directory activity and the repository's
// lines-of-code evolution. Pure derivation; rendering happens elsewhere.
package stats

import (
	"sort"
	"time"

	"github.com/svnscope/svnscope-go/internal/commits"
	"github.com/svnscope/svnscope-go/internal/models"
)

// AuthorActivity aggregates one contributor's footprint.
type AuthorActivity struct {
	Name          string    `db:"name"`
	Revisions     int       `db:"revisions"`
	Commits       int       `db:"commits"`
	LinesAdded    int       `db:"lines_added"`
	LinesRemoved  int       `db:"lines_removed"`
	FirstActivity time.Time `db:"first_activity"`
	LastActivity  time.Time `db:"last_activity"`
}

// DirectoryActivity aggregates one directory's current state and churn.
type DirectoryActivity struct {
	Path         string `db:"path"`
	Depth        int    `db:"depth"`
	CurrentLines int    `db:"current_lines"`
	CurrentFiles int    `db:"current_files"`
	Changes      int    `db:"changes"`
}

// FileChurn is one file's total rewrite volume.
type FileChurn struct {
	Path         string `db:"path"`
	Revisions    int    `db:"revisions"`
	LinesAdded   int    `db:"lines_added"`
	LinesRemoved int    `db:"lines_removed"`
	CurrentLines int    `db:"current_lines"`
	Dead         bool   `db:"dead"`
}

// LocPoint is one step of the lines-of-code evolution.
type LocPoint struct {
	Date  time.Time `db:"date"`
	Lines int       `db:"lines"`
}

// Authors aggregates per-author activity from revisions and grouped
// commits, sorted by name.
func Authors(repo *models.Repository, commitList []*commits.Commit) []AuthorActivity {
	byAuthor := make(map[*models.Author]*AuthorActivity)

	for _, rev := range repo.Revisions() {
		author := rev.Author()
		if author == nil {
			continue
		}
		act, ok := byAuthor[author]
		if !ok {
			act = &AuthorActivity{Name: author.Name(), FirstActivity: rev.Date(), LastActivity: rev.Date()}
			byAuthor[author] = act
		}
		act.Revisions++
		act.LinesAdded += rev.Lines().Added
		act.LinesRemoved += rev.Lines().Removed
		if rev.Date().Before(act.FirstActivity) {
			act.FirstActivity = rev.Date()
		}
		if rev.Date().After(act.LastActivity) {
			act.LastActivity = rev.Date()
		}
	}

	for _, c := range commitList {
		if act, ok := byAuthor[c.Author()]; ok {
			act.Commits++
		}
	}

	out := make([]AuthorActivity, 0, len(byAuthor))
	for _, act := range byAuthor {
		out = append(out, *act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Directories walks the tree and reports every directory, including ones
// that are historically populated but currently empty.
func Directories(repo *models.Repository) []DirectoryActivity {
	changes := make(map[*models.Directory]int)
	for _, f := range repo.Files() {
		changes[f.Directory()] += len(f.Revisions())
	}

	var out []DirectoryActivity
	repo.Root().Walk(func(d *models.Directory) {
		out = append(out, DirectoryActivity{
			Path:         d.Path(),
			Depth:        d.Depth(),
			CurrentLines: d.CurrentLines(),
			CurrentFiles: d.CurrentFileCount(),
			Changes:      changes[d],
		})
	})
	return out
}

// Churn reports per-file rewrite volume, sorted by path.
func Churn(repo *models.Repository) []FileChurn {
	var out []FileChurn
	for _, f := range repo.Files() {
		if f.IsDirectoryLike() {
			continue
		}
		churn := FileChurn{
			Path:         f.Path(),
			Revisions:    len(f.Revisions()),
			CurrentLines: f.CurrentLines(),
			Dead:         f.IsDead(),
		}
		for _, rev := range f.Revisions() {
			churn.LinesAdded += rev.Lines().Added
			churn.LinesRemoved += rev.Lines().Removed
		}
		out = append(out, churn)
	}
	return out
}

// LocOverTime builds the repository's line-count series from grouped
// commits, anchored so the last point equals the model's current total.
func LocOverTime(repo *models.Repository, commitList []*commits.Commit) []LocPoint {
	ordered := append([]*commits.Commit(nil), commitList...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date().Before(ordered[j].Date())
	})

	totalDelta := 0
	for _, c := range ordered {
		totalDelta += c.LinesDelta()
	}
	base := repo.CurrentLines() - totalDelta

	points := make([]LocPoint, 0, len(ordered))
	running := base
	for _, c := range ordered {
		running += c.LinesDelta()
		points = append(points, LocPoint{Date: c.Date(), Lines: running})
	}
	return points
}
