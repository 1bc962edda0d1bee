package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/susu3304/pokerclub/internal/dinner"
)

func (db *DB) InsertDinner(ctx context.Context, r dinner.Record) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO dinner_sessions (id, name, date, food_cost, drink_cost, created_at)
			 VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)`,
			r.ID, r.Name, r.Date, r.FoodCost.StringFixed(2), r.DrinkCost.StringFixed(2), r.CreatedAt,
		); err != nil {
			return err
		}
		for i, p := range r.Participants {
			if _, err := tx.Exec(ctx,
				`INSERT INTO dinner_participants (dinner_id, player_id, position, name, is_eating, is_drinking)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				r.ID, p.PlayerID, i, p.Name, p.IsEating, p.IsDrinking,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListDinners returns finalized dinners, newest first.
func (db *DB) ListDinners(ctx context.Context) ([]dinner.Record, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, date, food_cost::text, drink_cost::text, created_at
		 FROM dinner_sessions
		 ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	var out []dinner.Record
	index := map[string]int{}
	for rows.Next() {
		var (
			r           dinner.Record
			food, drink string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Date, &food, &drink, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		if r.FoodCost, err = decimal.NewFromString(food); err != nil {
			rows.Close()
			return nil, fmt.Errorf("dinner %s food cost: %w", r.ID, err)
		}
		if r.DrinkCost, err = decimal.NewFromString(drink); err != nil {
			rows.Close()
			return nil, fmt.Errorf("dinner %s drink cost: %w", r.ID, err)
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.pool.Query(ctx,
		`SELECT dinner_id, player_id, name, is_eating, is_drinking
		 FROM dinner_participants
		 ORDER BY dinner_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			dinnerID string
			p        dinner.Participant
		)
		if err := rows.Scan(&dinnerID, &p.PlayerID, &p.Name, &p.IsEating, &p.IsDrinking); err != nil {
			return nil, err
		}
		if i, ok := index[dinnerID]; ok {
			out[i].Participants = append(out[i].Participants, p)
		}
	}
	return out, rows.Err()
}
