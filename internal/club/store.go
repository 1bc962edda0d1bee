package club

import (
	"context"
	"errors"

	"github.com/susu3304/pokerclub/internal/cashier"
	"github.com/susu3304/pokerclub/internal/dinner"
	"github.com/susu3304/pokerclub/internal/ledger"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("session was changed by someone else")
	ErrForbidden       = errors.New("admin or owner role required")
)

// State is everything the accounting rules read from persistence.
// Sessions are ordered newest first.
type State struct {
	Players  []ledger.Player
	Sessions []ledger.Session
	Defaults ledger.GameDefaults
}

// Store is the persistence collaborator. Every method is all-or-nothing.
type Store interface {
	LoadState(ctx context.Context) (*State, error)
	InsertSession(ctx context.Context, s ledger.Session) error
	// UpdateSession replaces a session if its stored version still equals
	// expectedVersion, returning ErrVersionConflict otherwise.
	UpdateSession(ctx context.Context, s ledger.Session, expectedVersion int) error
	DeleteSession(ctx context.Context, id string) error
	MarkSettled(ctx context.Context, refs []cashier.EntryRef) error
	SavePlayer(ctx context.Context, p ledger.Player) error
	DeletePlayer(ctx context.Context, id string) error
	SaveDefaults(ctx context.Context, d ledger.GameDefaults) error
	InsertDinner(ctx context.Context, r dinner.Record) error
	ListDinners(ctx context.Context) ([]dinner.Record, error)
}

// persistErr tags store failures so callers can tell them from rule violations.
func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrVersionConflict) {
		return err
	}
	return &ledger.PersistenceError{Op: op, Err: err}
}
