package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/guesstheword/assets"
)

const (
	// DefaultLimit is used by Top when no limit is given.
	DefaultLimit = 20
	// MaxLimit is the most rows Top returns.
	MaxLimit = 100
)

// Round is one finished round as journaled.
type Round struct {
	ID         int64     `json:"id"`
	ScreenID   string    `json:"screenId"`
	Score      int       `json:"score"`
	Corrects   int       `json:"corrects"`
	Skips      int       `json:"skips"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Store reads and writes the rounds table.
type Store struct{ db *sql.DB }

// Open opens the database at dsn and applies the embedded migrations.
func Open(dsn string) (*Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	mig, err := assets.Migrations()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db, mig); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts a finished round and returns its row ID.
func (s *Store) Record(ctx context.Context, r Round) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds(screen_id, score, corrects, skips, started_at, finished_at)
		VALUES(?,?,?,?,?,?)`,
		r.ScreenID, r.Score, r.Corrects, r.Skips,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert round: %w", err)
	}
	return res.LastInsertId()
}

// Top lists the best rounds: highest score first, earliest finish on ties.
func (s *Store) Top(ctx context.Context, limit int) ([]Round, error) {
	limit = ClampLimit(limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, screen_id, score, corrects, skips, started_at, finished_at
		FROM rounds
		ORDER BY score DESC, finished_at ASC, id ASC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		var started, finished string
		if err := rows.Scan(&r.ID, &r.ScreenID, &r.Score, &r.Corrects, &r.Skips, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = mustParse(started)
		r.FinishedAt = mustParse(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClampLimit maps a requested row count into [1, MaxLimit]; non-positive
// values mean DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
