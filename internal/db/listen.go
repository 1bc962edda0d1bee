package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const listenRetry = 5 * time.Second

// Listen calls onChange for every notification on ChangesChannel, including
// ones from other processes sharing the database. It reconnects until ctx ends.
func (db *DB) Listen(ctx context.Context, onChange func()) error {
	for {
		err := db.listenOnce(ctx, onChange)
		if ctx.Err() != nil {
			return nil
		}
		db.log.Warn().Err(err).Dur("retry_in", listenRetry).Msg("change listener dropped")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(listenRetry):
		}
	}
}

func (db *DB) listenOnce(ctx context.Context, onChange func()) error {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release(conn)

	if _, err := conn.Exec(ctx, "LISTEN "+ChangesChannel); err != nil {
		return err
	}
	db.log.Debug().Str("channel", ChangesChannel).Msg("listening for changes")
	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		onChange()
	}
}

// release drops the connection instead of returning it to the pool, since it
// is still subscribed.
func release(conn *pgxpool.Conn) {
	_ = conn.Conn().Close(context.Background())
	conn.Release()
}
