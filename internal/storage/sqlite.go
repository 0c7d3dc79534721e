// Package storage provides the durable backends for the cart snapshot:
// a local SQLite database (the default) and Redis. Both store the same
// owned format, a JSON array of line items under one fixed key.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/cart"
)

// SnapshotKey is the single storage key the cart has always been persisted
// under. There is no versioning scheme; a schema change needs a manual
// migration.
const SnapshotKey = "@myapp_cart_v1"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cart_snapshots WHERE key = ?`, SnapshotKey,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart snapshot: %w", err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}

	return items, nil
}

func (s *SQLiteStore) Save(ctx context.Context, items []cart.LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cart_snapshots (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		SnapshotKey, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cart snapshot: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
