package chartstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultListLimit caps List when the filter sets no limit.
const DefaultListLimit = 100

// Filter narrows List results.
type Filter struct {
	Algorithm string
	Limit     int
}

// Store persists charts in a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the chart database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	// Writers wait for each other instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS charts (
		id TEXT PRIMARY KEY,
		cid TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		algorithm TEXT NOT NULL,
		code TEXT NOT NULL,
		repeated BOOLEAN NOT NULL DEFAULT 0,
		ciphertext TEXT NOT NULL,
		bits TEXT NOT NULL,
		grid_rows INTEGER NOT NULL,
		grid_cols INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,

		CONSTRAINT pattern_unique UNIQUE(cid, algorithm, repeated)
	);

	CREATE INDEX IF NOT EXISTS idx_charts_algorithm ON charts(algorithm);
	CREATE INDEX IF NOT EXISTS idx_charts_created ON charts(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save stores c and returns the stored chart. A chart with the same
// content ID, algorithm and repeat setting is not stored twice; the
// existing one is returned instead. Save fills in ID, CID and CreatedAt.
func (s *Store) Save(ctx context.Context, c *Chart) (*Chart, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	contentID, err := ContentID(c.Binary)
	if err != nil {
		return nil, err
	}

	saved := *c
	saved.ID = ulid.Make().String()
	saved.CID = contentID
	saved.CreatedAt = s.now()

	query := `
	INSERT INTO charts (
		id, cid, label, algorithm, code, repeated,
		ciphertext, bits, grid_rows, grid_cols, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(cid, algorithm, repeated) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		saved.ID,
		saved.CID,
		saved.Label,
		saved.Algorithm,
		saved.Code,
		saved.Repeat,
		saved.Ciphertext,
		saved.Binary,
		saved.Rows,
		saved.Cols,
		saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to insert chart: %w", err)
	}
	if n == 0 {
		existing, err := s.findByPattern(ctx, contentID, c.Algorithm, c.Repeat)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored chart: %w", err)
		}
		s.logger.Debug("chart already stored", "id", existing.ID, "cid", contentID)
		return existing, nil
	}

	s.logger.Info("chart saved", "id", saved.ID, "algorithm", saved.Algorithm, "cid", saved.CID)
	return &saved, nil
}

const selectColumns = `
	SELECT id, cid, label, algorithm, code, repeated,
		ciphertext, bits, grid_rows, grid_cols, created_at
	FROM charts
`

// Get retrieves a chart by ID.
func (s *Store) Get(ctx context.Context, id string) (*Chart, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanChart(row)
}

func (s *Store) findByPattern(ctx context.Context, contentID, algorithm string, repeat bool) (*Chart, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+" WHERE cid = ? AND algorithm = ? AND repeated = ?",
		contentID, algorithm, repeat)
	return scanChart(row)
}

// List returns charts newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]*Chart, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := selectColumns
	args := []any{}
	if f.Algorithm != "" {
		query += " WHERE algorithm = ?"
		args = append(args, f.Algorithm)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query charts: %w", err)
	}
	defer rows.Close()

	var charts []*Chart
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate charts: %w", err)
	}
	return charts, nil
}

// Delete removes a chart by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM charts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete chart: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.logger.Info("chart deleted", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChart(row scanner) (*Chart, error) {
	var c Chart
	err := row.Scan(
		&c.ID,
		&c.CID,
		&c.Label,
		&c.Algorithm,
		&c.Code,
		&c.Repeat,
		&c.Ciphertext,
		&c.Binary,
		&c.Rows,
		&c.Cols,
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chart: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
