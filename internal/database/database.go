// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. Nil when DATABASE_URL is not configured;
// callers must treat a nil pool as "persistence disabled".
var DB *pgxpool.Pool

// Connect opens the shared pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		logrus.Info("database: DATABASE_URL not set, persistence disabled")
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("database: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("database: ping: %w", err)
	}
	DB = pool
	logrus.Info("database: connected")
	return nil
}

// CreateSchema creates the tables the service needs. Idempotent.
func CreateSchema(ctx context.Context) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	username      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	is_ephemeral  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS games (
	id            UUID PRIMARY KEY,
	initial_state JSONB,
	final_state   JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at   TIMESTAMPTZ
);`)
	if err != nil {
		return fmt.Errorf("database: create schema: %w", err)
	}
	return nil
}

// UpsertInitialGameState stores the dealt state of a new game for audit and
// replay. Runs best-effort: failures are logged, not propagated to gameplay.
func UpsertInitialGameState(ctx context.Context, gameID uuid.UUID, snapshot any) {
	if DB == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		logrus.Errorf("database: marshal initial state for game %s: %v", gameID, err)
		return
	}
	_, err = DB.Exec(ctx, `
INSERT INTO games (id, initial_state) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET initial_state = EXCLUDED.initial_state`,
		gameID, data)
	if err != nil {
		logrus.Errorf("database: upsert initial state for game %s: %v", gameID, err)
	}
}

// StoreFinalGameState stores the finished game's outcome snapshot.
func StoreFinalGameState(ctx context.Context, gameID uuid.UUID, snapshot any) {
	if DB == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		logrus.Errorf("database: marshal final state for game %s: %v", gameID, err)
		return
	}
	_, err = DB.Exec(ctx, `
UPDATE games SET final_state = $2, finished_at = now() WHERE id = $1`,
		gameID, data)
	if err != nil {
		logrus.Errorf("database: store final state for game %s: %v", gameID, err)
	}
}
