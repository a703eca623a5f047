package svn

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/svnscope/svnscope-go/internal/reconcile"
)

// binaryMarker is what svn prints instead of a diff for binary content.
const binaryMarker = "Cannot display: file marked as a binary type."

// DiffProvider computes line deltas by running `svn diff` between two
// revisions of one path. Implements reconcile.DiffProvider.
type DiffProvider struct {
	client *Client
}

// NewDiffProvider creates a diff provider over the client.
func NewDiffProvider(client *Client) *DiffProvider {
	return &DiffProvider{client: client}
}

// LineDiff returns lines added and removed between oldRev and newRev of
// path. Returns reconcile.ErrBinaryFile when svn reports binary content.
func (p *DiffProvider) LineDiff(ctx context.Context, oldRev, newRev, path string) (int, int, error) {
	out, err := p.client.run(ctx, "diff", "-r", oldRev+":"+newRev, path)
	if err != nil {
		return 0, 0, err
	}
	return countDiffLines(out)
}

// countDiffLines counts content lines in unified diff output. Header lines
// ("+++", "---") do not count.
func countDiffLines(diff []byte) (added, removed int, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(diff))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, binaryMarker):
			return 0, 0, reconcile.ErrBinaryFile
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// file headers
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("scanning diff output: %w", err)
	}
	return added, removed, nil
}
