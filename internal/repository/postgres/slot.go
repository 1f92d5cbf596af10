package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/MuzammilBaloch-22/Cakelora/pkg/database"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for the cart_snapshots table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	selectSnapshotSQL = `SELECT payload FROM cart_snapshots WHERE slot_key = $1`

	upsertSnapshotSQL = `
		INSERT INTO cart_snapshots (slot_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot_key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	deleteSnapshotSQL = `DELETE FROM cart_snapshots WHERE slot_key = $1`
)

// SlotStore implements repository.SlotStore on a PostgreSQL table.
type SlotStore struct {
	db database.DBTX
}

// NewSlotStore creates a PostgreSQL-backed slot store.
func NewSlotStore(db database.DBTX) *SlotStore {
	return &SlotStore{db: db}
}

// Migrate brings the cart_snapshots schema up to date.
func (s *SlotStore) Migrate(ctx context.Context, logger *slog.Logger) error {
	return database.RunMigrations(ctx, s.db, Migrations(), logger)
}

// Get retrieves the payload stored under key.
func (s *SlotStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceQuery(ctx, "postgres", "GetSnapshot", selectSnapshotSQL)
	defer func() { end(err) }()

	var payload []byte
	if err := s.db.QueryRow(ctx, selectSnapshotSQL, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("slot", key)
		}
		return nil, fmt.Errorf("get cart snapshot: %w", err)
	}
	return payload, nil
}

// Set upserts the payload for key.
func (s *SlotStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgres", "SaveSnapshot", upsertSnapshotSQL)
	defer func() { end(err) }()

	if _, err := s.db.Exec(ctx, upsertSnapshotSQL, key, value); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

// Delete removes the row for key.
func (s *SlotStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, "postgres", "DeleteSnapshot", deleteSnapshotSQL)
	defer func() { end(err) }()

	if _, err := s.db.Exec(ctx, deleteSnapshotSQL, key); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

// Ping checks the connection when the underlying pool supports it.
func (s *SlotStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the underlying pool when it is closable.
func (s *SlotStore) Close() error {
	if c, ok := s.db.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
