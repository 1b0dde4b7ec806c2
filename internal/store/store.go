// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists comparison runs in SQLite or PostgreSQL so earlier
// results can be listed, shown, and served without re-querying the API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/venue-overlap/pkg/types"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Sides of a match in the match_papers table.
const (
	sideA = "a"
	sideB = "b"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID          string      `json:"id"`
	StartedAt   time.Time   `json:"started_at"`
	StartYear   int         `json:"start_year"`
	EndYear     int         `json:"end_year"`
	VenueA      types.Venue `json:"venue_a"`
	VenueB      types.Venue `json:"venue_b"`
	AuthorsA    int         `json:"authors_a"`
	AuthorsB    int         `json:"authors_b"`
	FailedYears int         `json:"failed_years"`
	Matches     int         `json:"matches"`
}

// Store manages the result database.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database named by cfg and creates the schema if it
// does not exist. A SQLite database file's directory is created as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store dsn is required")
	}

	dsn := cfg.DSN
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_foreign_keys=on"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			start_year INTEGER NOT NULL,
			end_year INTEGER NOT NULL,
			venue_a TEXT NOT NULL,
			venue_b TEXT NOT NULL,
			authors_a INTEGER NOT NULL,
			authors_b INTEGER NOT NULL,
			papers_a INTEGER NOT NULL,
			papers_b INTEGER NOT NULL,
			failed_years INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			key_kind TEXT NOT NULL,
			key_value TEXT NOT NULL,
			display_name TEXT NOT NULL,
			count_a INTEGER NOT NULL,
			count_b INTEGER NOT NULL,
			PRIMARY KEY (run_id, rank)
		)`,
		`CREATE TABLE IF NOT EXISTS match_papers (
			run_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			side TEXT NOT NULL,
			seq INTEGER NOT NULL,
			year INTEGER NOT NULL,
			title TEXT NOT NULL,
			author_name TEXT NOT NULL,
			normalized_name TEXT NOT NULL,
			pid TEXT NOT NULL,
			venue TEXT NOT NULL,
			PRIMARY KEY (run_id, rank, side, seq),
			FOREIGN KEY (run_id, rank) REFERENCES matches(run_id, rank) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveRun stores run, its matches, and their papers in one transaction.
// Saving a run whose ID already exists replaces it.
func (s *Store) SaveRun(ctx context.Context, run types.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM match_papers WHERE run_id = ?`,
		`DELETE FROM matches WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.rebind(q), run.ID); err != nil {
			return fmt.Errorf("clearing previous run: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO runs (id, started_at, start_year, end_year, venue_a, venue_b,
			authors_a, authors_b, papers_a, papers_b, failed_years)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), run.StartYear, run.EndYear,
		string(run.VenueA), string(run.VenueB), run.AuthorsA, run.AuthorsB,
		run.PapersA, run.PapersB, run.FailedYears,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	matchStmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO matches (run_id, rank, key_kind, key_value, display_name, count_a, count_b)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("preparing match insert: %w", err)
	}
	defer matchStmt.Close()

	paperStmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO match_papers (run_id, rank, side, seq, year, title, author_name, normalized_name, pid, venue)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	for i, m := range run.Matches {
		rank := i + 1
		_, err := matchStmt.ExecContext(ctx,
			run.ID, rank, string(m.Key.Kind), m.Key.Value, m.DisplayName, m.CountA, m.CountB)
		if err != nil {
			return fmt.Errorf("inserting match %s: %w", m.Key, err)
		}
		for side, papers := range map[string][]types.PaperRecord{sideA: m.PapersA, sideB: m.PapersB} {
			for seq, p := range papers {
				_, err := paperStmt.ExecContext(ctx,
					run.ID, rank, side, seq, p.Year, p.Title,
					p.AuthorName, p.NormalizedName, p.PID, string(p.Venue))
				if err != nil {
					return fmt.Errorf("inserting paper for %s: %w", m.Key, err)
				}
			}
		}
	}

	return tx.Commit()
}

// ListRuns returns every stored run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.start_year, r.end_year, r.venue_a, r.venue_b,
			r.authors_a, r.authors_b, r.failed_years,
			(SELECT count(*) FROM matches m WHERE m.run_id = r.id)
		 FROM runs r
		 ORDER BY r.started_at DESC, r.id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rs      RunSummary
			started string
			va, vb  string
		)
		if err := rows.Scan(&rs.ID, &started, &rs.StartYear, &rs.EndYear, &va, &vb,
			&rs.AuthorsA, &rs.AuthorsB, &rs.FailedYears, &rs.Matches); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rs.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rs.VenueA, rs.VenueB = types.Venue(va), types.Venue(vb)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// LatestRun loads the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (*types.Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY started_at DESC, id LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest run: %w", err)
	}
	return s.LoadRun(ctx, id)
}

// LoadRun loads the run with id, including its ranked matches.
func (s *Store) LoadRun(ctx context.Context, id string) (*types.Run, error) {
	run := types.Run{ID: id}
	var started, va, vb string
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT started_at, start_year, end_year, venue_a, venue_b,
			authors_a, authors_b, papers_a, papers_b, failed_years
		 FROM runs WHERE id = ?`), id,
	).Scan(&started, &run.StartYear, &run.EndYear, &va, &vb,
		&run.AuthorsA, &run.AuthorsB, &run.PapersA, &run.PapersB, &run.FailedYears)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	run.VenueA, run.VenueB = types.Venue(va), types.Venue(vb)

	matches, err := s.loadMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Matches = matches
	return &run, nil
}

func (s *Store) loadMatches(ctx context.Context, runID string) ([]types.MatchResult, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT rank, key_kind, key_value, display_name, count_a, count_b
		 FROM matches WHERE run_id = ? ORDER BY rank`), runID)
	if err != nil {
		return nil, fmt.Errorf("loading matches: %w", err)
	}
	defer rows.Close()

	var matches []types.MatchResult
	byRank := make(map[int]int)
	for rows.Next() {
		var (
			m    types.MatchResult
			rank int
			kind string
		)
		if err := rows.Scan(&rank, &kind, &m.Key.Value, &m.DisplayName, &m.CountA, &m.CountB); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.Key.Kind = types.KeyKind(kind)
		byRank[rank] = len(matches)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	prows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT rank, side, year, title, author_name, normalized_name, pid, venue
		 FROM match_papers WHERE run_id = ? ORDER BY rank, side, seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("loading match papers: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var (
			p          types.PaperRecord
			rank       int
			side, venue string
		)
		if err := prows.Scan(&rank, &side, &p.Year, &p.Title, &p.AuthorName,
			&p.NormalizedName, &p.PID, &venue); err != nil {
			return nil, fmt.Errorf("scanning match paper: %w", err)
		}
		p.Venue = types.Venue(venue)
		i, ok := byRank[rank]
		if !ok {
			continue
		}
		if side == sideA {
			matches[i].PapersA = append(matches[i].PapersA, p)
		} else {
			matches[i].PapersB = append(matches[i].PapersB, p)
		}
	}
	return matches, prows.Err()
}
