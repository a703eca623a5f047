package svn

import (
	"bytes"
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// LogSource fetches the raw revision log for the working copy.
type LogSource struct {
	client *Client
	logger *logrus.Logger
}

// NewLogSource creates a log source over the client's working copy.
func NewLogSource(client *Client, logger *logrus.Logger) *LogSource {
	return &LogSource{client: client, logger: logger}
}

// FetchLog returns the verbose XML log for the whole history of the
// working copy, oldest revision first.
func (s *LogSource) FetchLog(ctx context.Context) (io.Reader, error) {
	s.logger.WithField("working_copy", s.client.WorkingCopy()).Debug("Fetching revision log")
	out, err := s.client.run(ctx, "log", "-v", "--xml", "-r", "1:HEAD")
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}
