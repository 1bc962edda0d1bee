package clubtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/susu3304/pokerclub/internal/club"
)

// MemUsers is an in-memory club.UserStore.
type MemUsers struct {
	mu    sync.Mutex
	users map[string]club.User
	Now   func() time.Time
}

var _ club.UserStore = (*MemUsers)(nil)

func NewMemUsers(users ...club.User) *MemUsers {
	m := &MemUsers{users: make(map[string]club.User), Now: time.Now}
	for _, u := range users {
		m.users[u.DiscordID] = u
	}
	return m
}

func (m *MemUsers) UpsertUser(ctx context.Context, discordID, username string, defaultRole club.Role, force bool) (club.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	u, ok := m.users[discordID]
	if !ok {
		u = club.User{DiscordID: discordID, Role: defaultRole, CreatedAt: now}
	}
	if force {
		u.Role = defaultRole
	}
	u.Username = username
	u.LastLogin = now
	m.users[discordID] = u
	return u, nil
}

func (m *MemUsers) GetUser(ctx context.Context, discordID string) (club.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[discordID]
	if !ok {
		return club.User{}, club.ErrNotFound
	}
	return u, nil
}

func (m *MemUsers) ListUsers(ctx context.Context) ([]club.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]club.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscordID < out[j].DiscordID })
	return out, nil
}

func (m *MemUsers) SetRole(ctx context.Context, discordID string, role club.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[discordID]
	if !ok {
		return club.ErrNotFound
	}
	u.Role = role
	m.users[discordID] = u
	return nil
}
