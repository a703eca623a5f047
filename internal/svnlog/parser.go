package svnlog

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/svnscope/svnscope-go/internal/errors"
)

// logEntry mirrors one <logentry> element of `svn log -v --xml` output.
type logEntry struct {
	Revision string     `xml:"revision,attr"`
	Author   string     `xml:"author"`
	Date     string     `xml:"date"`
	Message  string     `xml:"msg"`
	Paths    []logEntryPath `xml:"paths>path"`
}

type logEntryPath struct {
	Action      string `xml:"action,attr"`
	Kind        string `xml:"kind,attr"`
	CopyFrom    string `xml:"copyfrom-path,attr"`
	CopyFromRev string `xml:"copyfrom-rev,attr"`
	Value       string `xml:",chardata"`
}

// Parser streams an XML revision log and applies every entry to a Builder.
// Structural problems are fatal: a partially parsed model is never usable.
type Parser struct {
	logger *logrus.Logger
}

// NewParser creates a log parser.
func NewParser(logger *logrus.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads the log from r and emits builder calls, one BuildRevision per
// path per logentry. Returns a log-syntax error for malformed input and the
// empty-repository condition when the log holds zero revisions.
func (p *Parser) Parse(r io.Reader, builder Builder) error {
	decoder := xml.NewDecoder(r)
	entries := 0
	records := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeLogSyntax, errors.SeverityCritical, "reading log XML")
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "logentry" {
			continue
		}

		var entry logEntry
		if err := decoder.DecodeElement(&entry, &start); err != nil {
			return errors.Wrap(err, errors.ErrorTypeLogSyntax, errors.SeverityCritical, "decoding logentry")
		}
		entries++

		recs, err := p.entryRecords(entry)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := builder.BuildRevision(rec); err != nil {
				return err
			}
			records++
		}
	}

	if entries == 0 {
		return errors.EmptyRepositoryError("log contains no revisions")
	}

	p.logger.WithFields(logrus.Fields{
		"entries": entries,
		"records": records,
	}).Debug("Log parsed")
	return nil
}

// entryRecords converts one logentry into per-path revision records,
// validating the fields the model cannot do without.
func (p *Parser) entryRecords(entry logEntry) ([]RevisionRecord, error) {
	if entry.Revision == "" {
		return nil, errors.LogSyntaxError("logentry without revision number")
	}
	if entry.Date == "" {
		return nil, errors.LogSyntaxErrorf("revision %s has no date", entry.Revision)
	}
	date, err := time.Parse(time.RFC3339Nano, entry.Date)
	if err != nil {
		return nil, errors.LogSyntaxErrorf("revision %s has unparsable date %q: %v", entry.Revision, entry.Date, err)
	}

	records := make([]RevisionRecord, 0, len(entry.Paths))
	for _, path := range entry.Paths {
		action, err := parseAction(path.Action)
		if err != nil {
			return nil, errors.LogSyntaxErrorf("revision %s path %s: %v", entry.Revision, path.Value, err)
		}
		records = append(records, RevisionRecord{
			Path:        path.Value,
			Revision:    entry.Revision,
			Date:        date,
			Author:      entry.Author,
			Comment:     entry.Message,
			Action:      action,
			IsDirectory: path.Kind == "dir",
			CopyFrom:    path.CopyFrom,
			CopyFromRev: path.CopyFromRev,
		})
	}
	return records, nil
}

func parseAction(letter string) (RecordAction, error) {
	switch letter {
	case "A":
		return RecordAdded, nil
	case "M":
		return RecordModified, nil
	case "D":
		return RecordDeleted, nil
	case "R":
		return RecordReplaced, nil
	default:
		return 0, errors.LogSyntaxErrorf("unknown action %q", letter)
	}
}
