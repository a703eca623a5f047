package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/svnscope/svnscope-go/internal/commits"
	"github.com/svnscope/svnscope-go/internal/stats"
)

// SQLiteStore writes report data to a local SQLite database.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		module TEXT NOT NULL,
		files INTEGER,
		revisions INTEGER,
		commits INTEGER,
		authors INTEGER,
		current_lines INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS commit_groups (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		date DATETIME,
		author TEXT,
		comment TEXT,
		revisions INTEGER,
		files INTEGER,
		lines_delta INTEGER,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);

	CREATE TABLE IF NOT EXISTS author_activity (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		revisions INTEGER,
		commits INTEGER,
		lines_added INTEGER,
		lines_removed INTEGER,
		first_activity DATETIME,
		last_activity DATETIME,
		PRIMARY KEY (run_id, name)
	);

	CREATE TABLE IF NOT EXISTS directory_activity (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		depth INTEGER,
		current_lines INTEGER,
		current_files INTEGER,
		changes INTEGER,
		PRIMARY KEY (run_id, path)
	);

	CREATE TABLE IF NOT EXISTS file_churn (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		revisions INTEGER,
		lines_added INTEGER,
		lines_removed INTEGER,
		current_lines INTEGER,
		dead BOOLEAN,
		PRIMARY KEY (run_id, path)
	);

	CREATE TABLE IF NOT EXISTS loc_series (
		run_id TEXT NOT NULL,
		date DATETIME NOT NULL,
		lines INTEGER,
		PRIMARY KEY (run_id, date)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun inserts the run summary row.
func (s *SQLiteStore) SaveRun(ctx context.Context, summary RunSummary) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO runs (run_id, module, files, revisions, commits, authors, current_lines)
		VALUES (:run_id, :module, :files, :revisions, :commits, :authors, :current_lines)`,
		summary)
	return err
}

// SaveCommits writes the grouped commits in one transaction.
func (s *SQLiteStore) SaveCommits(ctx context.Context, runID string, list []*commits.Commit) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, c := range list {
		author := ""
		if c.Author() != nil {
			author = c.Author().Name()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO commit_groups (run_id, seq, date, author, comment, revisions, files, lines_delta)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, c.Date(), author, c.Comment(), len(c.Revisions()), len(c.AffectedFiles()), c.LinesDelta())
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveAuthorActivity writes the per-author table.
func (s *SQLiteStore) SaveAuthorActivity(ctx context.Context, runID string, activity []stats.AuthorActivity) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range activity {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO author_activity (run_id, name, revisions, commits, lines_added, lines_removed, first_activity, last_activity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, a.Name, a.Revisions, a.Commits, a.LinesAdded, a.LinesRemoved, a.FirstActivity, a.LastActivity)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveDirectoryActivity writes the per-directory table.
func (s *SQLiteStore) SaveDirectoryActivity(ctx context.Context, runID string, activity []stats.DirectoryActivity) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range activity {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO directory_activity (run_id, path, depth, current_lines, current_files, changes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, d.Path, d.Depth, d.CurrentLines, d.CurrentFiles, d.Changes)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveFileChurn writes the per-file churn table.
func (s *SQLiteStore) SaveFileChurn(ctx context.Context, runID string, churn []stats.FileChurn) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, f := range churn {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO file_churn (run_id, path, revisions, lines_added, lines_removed, current_lines, dead)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, f.Path, f.Revisions, f.LinesAdded, f.LinesRemoved, f.CurrentLines, f.Dead)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveLocSeries writes the lines-of-code evolution.
func (s *SQLiteStore) SaveLocSeries(ctx context.Context, runID string, series []stats.LocPoint) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range series {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO loc_series (run_id, date, lines)
			VALUES (?, ?, ?)`,
			runID, p.Date, p.Lines)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
