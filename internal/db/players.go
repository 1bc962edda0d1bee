package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/ledger"
)

func queryPlayers(ctx context.Context, q pgx.Tx) ([]ledger.Player, error) {
	rows, err := q.Query(ctx, `SELECT id, name, contact, payment_key, active FROM players ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Player
	for rows.Next() {
		var p ledger.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Contact, &p.PaymentKey, &p.Active); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SavePlayer inserts the player or updates it in place.
func (db *DB) SavePlayer(ctx context.Context, p ledger.Player) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO players (id, name, contact, payment_key, active)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET name = EXCLUDED.name,
				 contact = EXCLUDED.contact,
				 payment_key = EXCLUDED.payment_key,
				 active = EXCLUDED.active`,
			p.ID, p.Name, p.Contact, p.PaymentKey, p.Active,
		)
		return err
	})
}

func (db *DB) DeletePlayer(ctx context.Context, id string) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return club.ErrNotFound
		}
		return nil
	})
}
