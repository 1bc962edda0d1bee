package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/susu3304/pokerclub/internal/ledger"
)

func queryDefaults(ctx context.Context, tx pgx.Tx) (ledger.GameDefaults, error) {
	var d ledger.GameDefaults
	err := tx.QueryRow(ctx, `SELECT buy_in_amount, rebuy_amount FROM app_config WHERE id = 1`).
		Scan(&d.BuyInAmount, &d.RebuyAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.GameDefaults{}, nil
	}
	return d, err
}

func (db *DB) SaveDefaults(ctx context.Context, d ledger.GameDefaults) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO app_config (id, buy_in_amount, rebuy_amount) VALUES (1, $1, $2)
			 ON CONFLICT (id) DO UPDATE
			 SET buy_in_amount = EXCLUDED.buy_in_amount, rebuy_amount = EXCLUDED.rebuy_amount`,
			d.BuyInAmount, d.RebuyAmount,
		)
		return err
	})
}
