package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/susu3304/pokerclub/internal/cashier"
	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/ledger"
)

// LoadState reads players, sessions and defaults from one consistent snapshot.
func (db *DB) LoadState(ctx context.Context) (*club.State, error) {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	st := &club.State{}
	if st.Players, err = queryPlayers(ctx, tx); err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	if st.Sessions, err = querySessions(ctx, tx); err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	if st.Defaults, err = queryDefaults(ctx, tx); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	return st, tx.Commit(ctx)
}

func querySessions(ctx context.Context, tx pgx.Tx) ([]ledger.Session, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, created_at, version FROM sessions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	var sessions []ledger.Session
	index := map[string]int{}
	for rows.Next() {
		var s ledger.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.Version); err != nil {
			rows.Close()
			return nil, err
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx,
		`SELECT session_id, player_id, name, buy_in, rebuys, total_invested, final_chips, paid
		 FROM session_participants
		 ORDER BY session_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sessionID string
			p         ledger.Participant
			paid      *bool
		)
		if err := rows.Scan(&sessionID, &p.PlayerID, &p.Name, &p.BuyIn, &p.Rebuys, &p.TotalInvested, &p.FinalChips, &paid); err != nil {
			return nil, err
		}
		// legacy rows carry NULL, which means unsettled
		if paid != nil && *paid {
			p.Paid = ledger.Settled
		}
		i, ok := index[sessionID]
		if !ok {
			continue
		}
		sessions[i].Participants = append(sessions[i].Participants, p)
	}
	return sessions, rows.Err()
}

func insertParticipants(ctx context.Context, tx pgx.Tx, s ledger.Session) error {
	for i, p := range s.Participants {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_participants
			 (session_id, player_id, position, name, buy_in, rebuys, total_invested, final_chips, paid)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.ID, p.PlayerID, i, p.Name, p.BuyIn, p.Rebuys, p.TotalInvested, p.FinalChips, p.Paid == ledger.Settled,
		); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) InsertSession(ctx context.Context, s ledger.Session) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sessions (id, name, created_at, version) VALUES ($1, $2, $3, $4)`,
			s.ID, s.Name, s.CreatedAt, s.Version,
		); err != nil {
			return err
		}
		return insertParticipants(ctx, tx, s)
	})
}

// UpdateSession replaces name and participants when the stored version still
// matches expectedVersion.
func (db *DB) UpdateSession(ctx context.Context, s ledger.Session, expectedVersion int) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE sessions SET name = $2, version = $3 WHERE id = $1 AND version = $4`,
			s.ID, s.Name, s.Version, expectedVersion,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return club.ErrVersionConflict
			}
			return club.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM session_participants WHERE session_id = $1`, s.ID); err != nil {
			return err
		}
		return insertParticipants(ctx, tx, s)
	})
}

func (db *DB) DeleteSession(ctx context.Context, id string) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return club.ErrNotFound
		}
		return nil
	})
}

// MarkSettled flips every referenced entry to paid in one transaction.
func (db *DB) MarkSettled(ctx context.Context, refs []cashier.EntryRef) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range refs {
			batch.Queue(
				`UPDATE session_participants SET paid = TRUE WHERE session_id = $1 AND player_id = $2`,
				r.SessionID, r.PlayerID,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
