package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/susu3304/pokerclub/internal/club"
)

const userColumns = `discord_id, username, role, created_at, last_login`

func scanUser(row pgx.Row) (club.User, error) {
	var (
		u    club.User
		role string
	)
	if err := row.Scan(&u.DiscordID, &u.Username, &role, &u.CreatedAt, &u.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return club.User{}, club.ErrNotFound
		}
		return club.User{}, err
	}
	r, err := club.ParseRole(role)
	if err != nil {
		r = club.RolePending
	}
	u.Role = r
	return u, nil
}

func (db *DB) UpsertUser(ctx context.Context, discordID, username string, defaultRole club.Role, force bool) (club.User, error) {
	return scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO club_users (discord_id, username, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (discord_id) DO UPDATE
		 SET username = EXCLUDED.username,
			 last_login = CURRENT_TIMESTAMP,
			 role = CASE WHEN $4 THEN EXCLUDED.role ELSE club_users.role END
		 RETURNING `+userColumns,
		discordID, username, string(defaultRole), force,
	))
}

func (db *DB) GetUser(ctx context.Context, discordID string) (club.User, error) {
	return scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM club_users WHERE discord_id = $1`, discordID))
}

func (db *DB) ListUsers(ctx context.Context) ([]club.User, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+userColumns+` FROM club_users ORDER BY created_at, discord_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []club.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (db *DB) SetRole(ctx context.Context, discordID string, role club.Role) error {
	ct, err := db.pool.Exec(ctx, `UPDATE club_users SET role = $2 WHERE discord_id = $1`, discordID, string(role))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return club.ErrNotFound
	}
	return nil
}
