package club

import (
	"context"
	"errors"
	"time"
)

var ErrOwnerOnly = errors.New("owner role required")

type User struct {
	DiscordID string    `json:"discord_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

func (u User) Actor() Actor {
	return Actor{ID: u.DiscordID, Role: u.Role}
}

type UserStore interface {
	// UpsertUser records a login. New users get defaultRole; existing users
	// keep theirs unless force is set.
	UpsertUser(ctx context.Context, discordID, username string, defaultRole Role, force bool) (User, error)
	GetUser(ctx context.Context, discordID string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, discordID string, role Role) error
}

// Directory assigns roles. The configured owner is always owner; everyone
// else arrives pending until the owner promotes them.
type Directory struct {
	store   UserStore
	ownerID string
}

func NewDirectory(store UserStore, ownerID string) *Directory {
	return &Directory{store: store, ownerID: ownerID}
}

func (d *Directory) Login(ctx context.Context, discordID, username string) (User, error) {
	if d.ownerID != "" && discordID == d.ownerID {
		return d.store.UpsertUser(ctx, discordID, username, RoleOwner, true)
	}
	return d.store.UpsertUser(ctx, discordID, username, RolePending, false)
}

// Resolve returns the caller's current role; unknown callers are visitors.
func (d *Directory) Resolve(ctx context.Context, discordID string) (Actor, error) {
	if discordID == "" {
		return Actor{Role: RoleVisitor}, nil
	}
	u, err := d.store.GetUser(ctx, discordID)
	if errors.Is(err, ErrNotFound) {
		return Actor{ID: discordID, Role: RoleVisitor}, nil
	}
	if err != nil {
		return Actor{}, persistErr("get user", err)
	}
	if d.ownerID != "" && discordID == d.ownerID {
		u.Role = RoleOwner
	}
	return u.Actor(), nil
}

func (d *Directory) Users(ctx context.Context, actor Actor) ([]User, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, persistErr("list users", err)
	}
	return users, nil
}

// SetRole lets the owner promote or demote anyone but themselves. Ownership
// comes from configuration and cannot be granted.
func (d *Directory) SetRole(ctx context.Context, actor Actor, discordID string, role Role) error {
	if actor.Role != RoleOwner {
		return ErrOwnerOnly
	}
	if role == RoleOwner || discordID == d.ownerID {
		return ErrOwnerOnly
	}
	if err := d.store.SetRole(ctx, discordID, role); err != nil {
		return persistErr("set role", err)
	}
	return nil
}
