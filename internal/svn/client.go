// Package svn talks to the version-control side of the pipeline: the `svn`
// command line for logs and diffs, and the checked-out working copy for
// existence and line counts. The rest of the system sees only interfaces.
package svn

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"golang.org/x/time/rate"
)

// Client runs svn subcommands against one working copy. Diff lookups fan
// out from a worker pool, so subprocess launches are rate limited to keep
// the machine responsive.
type Client struct {
	workingCopy string
	limiter     *rate.Limiter
}

// NewClient creates a client for the working copy at dir. ratePerSec <= 0
// disables throttling.
func NewClient(dir string, ratePerSec int) *Client {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &Client{
		workingCopy: dir,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

// WorkingCopy returns the working copy root.
func (c *Client) WorkingCopy() string { return c.workingCopy }

// run executes one svn subcommand and returns its stdout.
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "svn", append(args, "--non-interactive")...)
	cmd.Dir = c.workingCopy

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("svn %s failed: %w (stderr: %s)", args[0], err, stderr.String())
	}
	return out, nil
}
