package club_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/club/clubtest"
)

func TestDirectoryRoles(t *testing.T) {
	ctx := context.Background()
	dir := club.NewDirectory(clubtest.NewMemUsers(), "owner-1")

	u, err := dir.Login(ctx, "owner-1", "Boss")
	require.NoError(t, err)
	assert.Equal(t, club.RoleOwner, u.Role)

	u, err = dir.Login(ctx, "guest-1", "Guest")
	require.NoError(t, err)
	assert.Equal(t, club.RolePending, u.Role)

	actor, err := dir.Resolve(ctx, "stranger")
	require.NoError(t, err)
	assert.Equal(t, club.RoleVisitor, actor.Role)

	anon, err := dir.Resolve(ctx, "")
	require.NoError(t, err)
	assert.False(t, anon.CanManage())

	owner, err := dir.Resolve(ctx, "owner-1")
	require.NoError(t, err)

	pending, err := dir.Resolve(ctx, "guest-1")
	require.NoError(t, err)
	assert.ErrorIs(t, dir.SetRole(ctx, pending, "guest-1", club.RoleAdmin), club.ErrOwnerOnly)

	require.NoError(t, dir.SetRole(ctx, owner, "guest-1", club.RoleAdmin))
	promoted, err := dir.Resolve(ctx, "guest-1")
	require.NoError(t, err)
	assert.True(t, promoted.CanManage())

	// a later login keeps the granted role
	u, err = dir.Login(ctx, "guest-1", "Guest")
	require.NoError(t, err)
	assert.Equal(t, club.RoleAdmin, u.Role)

	assert.ErrorIs(t, dir.SetRole(ctx, promoted, "guest-1", club.RoleVisitor), club.ErrOwnerOnly)
	assert.ErrorIs(t, dir.SetRole(ctx, owner, "guest-1", club.RoleOwner), club.ErrOwnerOnly)
	assert.ErrorIs(t, dir.SetRole(ctx, owner, "owner-1", club.RoleVisitor), club.ErrOwnerOnly)
	assert.ErrorIs(t, dir.SetRole(ctx, owner, "nobody", club.RoleAdmin), club.ErrNotFound)

	users, err := dir.Users(ctx, promoted)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	_, err = dir.Users(ctx, anon)
	assert.ErrorIs(t, err, club.ErrForbidden)
}

func TestParseRole(t *testing.T) {
	r, err := club.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, club.RoleAdmin, r)

	_, err = club.ParseRole("superuser")
	assert.Error(t, err)
}

func TestHubCoalesces(t *testing.T) {
	hub := club.NewHub()
	ch, unsubscribe := hub.Subscribe()

	hub.Notify()
	hub.Notify()
	hub.Notify()

	<-ch
	select {
	case <-ch:
		t.Fatal("notifications should coalesce")
	default:
	}

	unsubscribe()
	unsubscribe()
	hub.Notify()
	select {
	case <-ch:
		t.Fatal("unsubscribed channel received a notification")
	default:
	}
}
