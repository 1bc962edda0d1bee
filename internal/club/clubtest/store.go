// Package clubtest provides in-memory stores for exercising club.Service.
package clubtest

import (
	"context"
	"sync"

	"github.com/susu3304/pokerclub/internal/cashier"
	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/dinner"
	"github.com/susu3304/pokerclub/internal/ledger"
)

// MemStore is an in-memory club.Store. FailWith, when set, is returned by the
// next write and then cleared. Writes counts successful writes.
type MemStore struct {
	mu       sync.Mutex
	Players  []ledger.Player
	Sessions []ledger.Session
	Defaults ledger.GameDefaults
	Dinners  []dinner.Record
	FailWith error
	Writes   int
}

var _ club.Store = (*MemStore)(nil)

func (m *MemStore) fail() error {
	err := m.FailWith
	m.FailWith = nil
	if err == nil {
		m.Writes++
	}
	return err
}

func cloneSession(s ledger.Session) ledger.Session {
	ps := make([]ledger.Participant, len(s.Participants))
	copy(ps, s.Participants)
	s.Participants = ps
	return s
}

func (m *MemStore) LoadState(ctx context.Context) (*club.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &club.State{Defaults: m.Defaults}
	st.Players = append(st.Players, m.Players...)
	for _, s := range m.Sessions {
		st.Sessions = append(st.Sessions, cloneSession(s))
	}
	return st, nil
}

func (m *MemStore) InsertSession(ctx context.Context, s ledger.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.Sessions = append([]ledger.Session{cloneSession(s)}, m.Sessions...)
	return nil
}

func (m *MemStore) UpdateSession(ctx context.Context, s ledger.Session, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for i := range m.Sessions {
		if m.Sessions[i].ID != s.ID {
			continue
		}
		if m.Sessions[i].Version != expectedVersion {
			return club.ErrVersionConflict
		}
		m.Sessions[i] = cloneSession(s)
		return nil
	}
	return club.ErrNotFound
}

func (m *MemStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for i := range m.Sessions {
		if m.Sessions[i].ID == id {
			m.Sessions = append(m.Sessions[:i], m.Sessions[i+1:]...)
			return nil
		}
	}
	return club.ErrNotFound
}

func (m *MemStore) MarkSettled(ctx context.Context, refs []cashier.EntryRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.Sessions = cashier.MarkSettled(m.Sessions, refs)
	return nil
}

func (m *MemStore) SavePlayer(ctx context.Context, p ledger.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for i := range m.Players {
		if m.Players[i].ID == p.ID {
			m.Players[i] = p
			return nil
		}
	}
	m.Players = append(m.Players, p)
	return nil
}

func (m *MemStore) DeletePlayer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for i := range m.Players {
		if m.Players[i].ID == id {
			m.Players = append(m.Players[:i], m.Players[i+1:]...)
			return nil
		}
	}
	return club.ErrNotFound
}

func (m *MemStore) SaveDefaults(ctx context.Context, d ledger.GameDefaults) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.Defaults = d
	return nil
}

func (m *MemStore) InsertDinner(ctx context.Context, r dinner.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.Dinners = append([]dinner.Record{r}, m.Dinners...)
	return nil
}

func (m *MemStore) ListDinners(ctx context.Context) ([]dinner.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dinner.Record(nil), m.Dinners...), nil
}
