// Package indexer keeps a SQLite read model of the canvas in sync with the
// pixel event stream.
package indexer

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/dyluth/pixellar/pkg/canvas"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DB is the relational read model.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// PainterStat counts the cells currently credited to one painter.
type PainterStat struct {
	Painter canvas.Identity `json:"painter"`
	Cells   int             `json:"cells"`
}

// OpenDB creates or opens the SQLite database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Upsert records the pixel at its coordinate. A row is only replaced by a pixel
// with an equal or newer timestamp, so replaying old events never rolls a cell back.
func (d *DB) Upsert(ctx context.Context, p canvas.PlacedPixel) error {
	const query = `
INSERT INTO pixels (x, y, color, last_painter, timestamp, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(x, y) DO UPDATE SET
    color        = excluded.color,
    last_painter = excluded.last_painter,
    timestamp    = excluded.timestamp,
    updated_at   = excluded.updated_at
WHERE excluded.timestamp >= pixels.timestamp`

	_, err := d.db.ExecContext(ctx, query,
		int64(p.Coord.X), int64(p.Coord.Y), int64(p.Pixel.Color), string(p.Pixel.Painter),
		int64(p.Pixel.Timestamp), d.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert pixel %s: %w", p.Coord, err)
	}
	return nil
}

// List returns every indexed cell in row-major order (x outer, y inner).
func (d *DB) List(ctx context.Context) ([]canvas.PlacedPixel, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT x, y, color, last_painter, timestamp FROM pixels ORDER BY x, y`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pixels: %w", err)
	}
	defer rows.Close()

	var pixels []canvas.PlacedPixel
	for rows.Next() {
		var p canvas.PlacedPixel
		var painter string
		if err := rows.Scan(&p.Coord.X, &p.Coord.Y, &p.Pixel.Color, &painter, &p.Pixel.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan pixel: %w", err)
		}
		p.Pixel.Painter = canvas.Identity(painter)
		pixels = append(pixels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pixels: %w", err)
	}
	return pixels, nil
}

// Get returns the indexed pixel at c, reporting false when the cell is not indexed.
func (d *DB) Get(ctx context.Context, c canvas.Coord) (canvas.Pixel, bool, error) {
	var p canvas.Pixel
	var painter string
	err := d.db.QueryRowContext(ctx,
		`SELECT color, last_painter, timestamp FROM pixels WHERE x = ? AND y = ?`,
		int64(c.X), int64(c.Y)).Scan(&p.Color, &painter, &p.Timestamp)
	if err == sql.ErrNoRows {
		return canvas.Pixel{}, false, nil
	}
	if err != nil {
		return canvas.Pixel{}, false, fmt.Errorf("failed to get pixel %s: %w", c, err)
	}
	p.Painter = canvas.Identity(painter)
	return p, true, nil
}

// PainterStats ranks painters by the number of cells they currently own.
// limit <= 0 returns every painter.
func (d *DB) PainterStats(ctx context.Context, limit int) ([]PainterStat, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.QueryContext(ctx, `
SELECT last_painter, COUNT(*) AS cells
FROM pixels
GROUP BY last_painter
ORDER BY cells DESC, last_painter ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query painter stats: %w", err)
	}
	defer rows.Close()

	var stats []PainterStat
	for rows.Next() {
		var s PainterStat
		var painter string
		if err := rows.Scan(&painter, &s.Cells); err != nil {
			return nil, fmt.Errorf("failed to scan painter stat: %w", err)
		}
		s.Painter = canvas.Identity(painter)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
