package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"PortfolioGuard/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite persists the position list to a SQLite database. Every write
// replaces the whole table inside one transaction.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps the rewrite transaction and readers on the same handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLite{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			ordinal         INTEGER PRIMARY KEY,
			symbol          TEXT NOT NULL UNIQUE,
			baseline_price  REAL NOT NULL,
			status          TEXT NOT NULL,
			invested_amount REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS store_state (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			updated_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLite) Name() string { return "sqlite" }

// Read returns ErrNotFound until the first Write.
func (s *SQLite) Read(ctx context.Context) ([]model.Position, error) {
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM store_state WHERE id = 1`).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query store state: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, baseline_price, status, invested_amount
		FROM positions ORDER BY ordinal ASC`)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]model.Position, 0)
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.Symbol, &p.BaselinePrice, &p.Status, &p.InvestedAmount); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return positions, nil
}

func (s *SQLite) Write(ctx context.Context, positions []model.Position) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	for i, p := range positions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO positions (ordinal, symbol, baseline_price, status, invested_amount)
			VALUES (?, ?, ?, ?, ?)`,
			i, p.Symbol, p.BaselinePrice, string(p.Status), p.InvestedAmount,
		); err != nil {
			return fmt.Errorf("insert position %s: %w", p.Symbol, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO store_state (id, updated_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("update store state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit positions: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
