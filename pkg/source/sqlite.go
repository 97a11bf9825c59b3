package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/stormgraph/pkg/cache"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/graph"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteOptions configures a [SQLite] source.
type SQLiteOptions struct {
	Path  string `toml:"path"`
	Table string `toml:"table"`
	Limit int    `toml:"limit"`
}

// SQLite summarizes a StormEvents table with BeginLocation and
// EndLocation columns.
type SQLite struct {
	opts SQLiteOptions
}

// NewSQLite creates a SQLite source. The database is opened on each Fetch.
func NewSQLite(opts SQLiteOptions) (*SQLite, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	opts.Limit = limitOrDefault(opts.Limit)
	if err := errs.ValidatePath(opts.Path); err != nil {
		return nil, err
	}
	if !identRe.MatchString(opts.Table) {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "invalid table name %q", opts.Table)
	}
	return &SQLite{opts: opts}, nil
}

// Name implements Source.
func (s *SQLite) Name() string { return "sqlite" }

// CacheKey implements Keyed.
func (s *SQLite) CacheKey() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{Endpoint: s.opts.Path, Query: fmt.Sprintf("%s limit %d", s.query(), s.opts.Limit)}
}

// Options returns the effective options.
func (s *SQLite) Options() SQLiteOptions { return s.opts }

func (s *SQLite) query() string {
	return fmt.Sprintf(`SELECT BeginLocation, EndLocation, COUNT(*)
FROM %s
WHERE BeginLocation <> EndLocation
GROUP BY BeginLocation, EndLocation
LIMIT ?`, s.opts.Table)
}

// Fetch implements Source.
func (s *SQLite) Fetch(ctx context.Context) (graph.Graph, error) {
	db, err := sql.Open("sqlite", s.opts.Path)
	if err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "open %s", s.opts.Path)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, s.query(), s.opts.Limit)
	if err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "query %s", s.opts.Path)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var begin, end sql.NullString
		var r Row
		if err := rows.Scan(&begin, &end, &r.Count); err != nil {
			return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "scan %s", s.opts.Path)
		}
		r.Begin, r.End = begin.String, end.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "query %s", s.opts.Path)
	}
	return BuildGraph(out), nil
}

// CreateSQLiteTable creates table (if missing) in the database at path
// and inserts one storm event per count in rows. It exists to seed demo
// and test databases.
func CreateSQLiteTable(ctx context.Context, path, table string, rows []Row) error {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return errs.New(errs.ErrCodeInvalidConfig, "invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (BeginLocation TEXT, EndLocation TEXT)`, table)); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (BeginLocation, EndLocation) VALUES (?, ?)`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		for range max(r.Count, 1) {
			if _, err := stmt.ExecContext(ctx, r.Begin, r.End); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
