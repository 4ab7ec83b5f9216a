// Package storage persists recommendation history to SQLite via the pure-Go
// modernc.org/sqlite driver, so deployments need no cgo or external database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
)

// Store is the minimal persistence surface the recommendation service needs.
type Store interface {
	SaveRecommendation(ctx context.Context, rec domain.Recommendation) error
	ListRecommendations(ctx context.Context) ([]domain.Recommendation, error)
	Close() error
}

// SQLiteStore implements Store on a single local database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `CREATE TABLE IF NOT EXISTS recommendations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	crop TEXT NOT NULL,
	month INTEGER NOT NULL,
	temperature REAL NOT NULL,
	rainfall REAL NOT NULL,
	soil_ph REAL NOT NULL,
	source TEXT NOT NULL,
	warning TEXT NOT NULL DEFAULT '',
	common_problems TEXT NOT NULL DEFAULT '',
	yield_tier TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);`

// NewSQLite opens (or creates) the database at path and bootstraps the schema.
func NewSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps reads from blocking on the small interactive writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not enable WAL mode", "error", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) SaveRecommendation(ctx context.Context, rec domain.Recommendation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recommendations(crop, month, temperature, rainfall, soil_ph, source, warning, common_problems, yield_tier, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		rec.Crop,
		rec.Conditions.Month,
		rec.Conditions.Temperature,
		rec.Conditions.Rainfall,
		rec.Conditions.SoilPH,
		rec.Source,
		rec.Warning,
		rec.CommonProblems,
		rec.YieldTier,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// ListRecommendations returns stored recommendations, most recent first,
// capped at 500 rows.
func (s *SQLiteStore) ListRecommendations(ctx context.Context) ([]domain.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT crop, month, temperature, rainfall, soil_ph, source, warning, common_problems, yield_tier, created_at
		 FROM recommendations ORDER BY id DESC LIMIT 500`)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Recommendation, 0)
	for rows.Next() {
		var rec domain.Recommendation
		var ts string
		if err := rows.Scan(
			&rec.Crop,
			&rec.Conditions.Month,
			&rec.Conditions.Temperature,
			&rec.Conditions.Rainfall,
			&rec.Conditions.SoilPH,
			&rec.Source,
			&rec.Warning,
			&rec.CommonProblems,
			&rec.YieldTier,
			&ts,
		); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
