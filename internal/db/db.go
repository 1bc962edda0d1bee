package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/susu3304/pokerclub/internal/club"
)

// ChangesChannel is the LISTEN/NOTIFY channel every write announces itself on.
const ChangesChannel = "club_changes"

type DB struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func New(ctx context.Context, databaseURL string, log zerolog.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, log: log.With().Str("component", "db").Logger()}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// RunMigrations creates the schema and seeds the game defaults on first run.
func (db *DB) RunMigrations(ctx context.Context, defaultBuyIn, defaultRebuy int64) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			contact TEXT NOT NULL DEFAULT '',
			payment_key TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at DESC);

		CREATE TABLE IF NOT EXISTS session_participants (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			player_id TEXT NOT NULL REFERENCES players(id),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			buy_in BIGINT NOT NULL DEFAULT 0,
			rebuys INTEGER NOT NULL DEFAULT 0,
			total_invested BIGINT NOT NULL,
			final_chips BIGINT NOT NULL,
			paid BOOLEAN,
			PRIMARY KEY (session_id, player_id)
		);
		CREATE INDEX IF NOT EXISTS idx_session_participants_player ON session_participants(player_id);

		CREATE TABLE IF NOT EXISTS app_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			buy_in_amount BIGINT NOT NULL,
			rebuy_amount BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS dinner_sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			food_cost NUMERIC(12, 2) NOT NULL DEFAULT 0,
			drink_cost NUMERIC(12, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS dinner_participants (
			dinner_id TEXT NOT NULL REFERENCES dinner_sessions(id) ON DELETE CASCADE,
			player_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			is_eating BOOLEAN NOT NULL DEFAULT FALSE,
			is_drinking BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (dinner_id, player_id)
		);

		CREATE TABLE IF NOT EXISTS club_users (
			discord_id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO app_config (id, buy_in_amount, rebuy_amount) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		defaultBuyIn, defaultRebuy,
	)
	return err
}

// inTx runs fn in a transaction and announces the change before committing,
// so listeners only hear about writes that landed.
func (db *DB) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, '')`, ChangesChannel); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var (
	_ club.Store     = (*DB)(nil)
	_ club.UserStore = (*DB)(nil)
)
