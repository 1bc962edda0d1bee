package club

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/susu3304/pokerclub/internal/dinner"
	"github.com/susu3304/pokerclub/internal/ledger"
)

func noActiveDinner() error {
	return &ledger.PreconditionError{Kind: ledger.NoActiveDinner, Detail: "no dinner in progress"}
}

func (s *Service) Dinner() *dinner.Dinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dinner.Clone()
}

func (s *Service) StartDinner(ctx context.Context, actor Actor, name string, playerIDs []string) (*dinner.Dinner, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dinner != nil {
		return nil, &ledger.PreconditionError{Kind: ledger.DinnerAlreadyActive, Detail: "finalize or cancel the current dinner first"}
	}
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	players, err := resolvePlayers(st.Players, playerIDs)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if strings.TrimSpace(name) == "" {
		name = ledger.FormatDateName(now)
	}
	d, err := dinner.Start(name, now, players)
	if err != nil {
		return nil, err
	}
	s.dinner = d
	s.log.Info().Str("dinner", d.Name).Int("guests", len(d.Participants)).Str("actor", actor.ID).Msg("dinner started")
	s.changed()
	return d.Clone(), nil
}

func (s *Service) mutateDinner(actor Actor, fn func(d *dinner.Dinner) error) (*dinner.Dinner, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dinner == nil {
		return nil, noActiveDinner()
	}
	if err := fn(s.dinner); err != nil {
		return nil, err
	}
	s.changed()
	return s.dinner.Clone(), nil
}

func (s *Service) SetDinnerCosts(actor Actor, food, drink decimal.Decimal) (*dinner.Dinner, error) {
	return s.mutateDinner(actor, func(d *dinner.Dinner) error {
		d.SetCosts(food, drink)
		return nil
	})
}

func (s *Service) RenameDinner(actor Actor, name string) (*dinner.Dinner, error) {
	return s.mutateDinner(actor, func(d *dinner.Dinner) error {
		if strings.TrimSpace(name) == "" {
			return &ledger.ValidationError{Kind: ledger.EmptyName, Detail: "dinner name is required"}
		}
		d.Rename(name)
		return nil
	})
}

func (s *Service) SetDinnerFlags(actor Actor, playerID string, eating, drinking bool) (*dinner.Dinner, error) {
	return s.mutateDinner(actor, func(d *dinner.Dinner) error {
		return d.SetFlags(playerID, eating, drinking)
	})
}

func (s *Service) CancelDinner(actor Actor) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dinner == nil {
		return noActiveDinner()
	}
	s.dinner = nil
	s.changed()
	return nil
}

// FinalizeDinner moves the live dinner into history. Unlike a poker session
// there is nothing to balance.
func (s *Service) FinalizeDinner(ctx context.Context, actor Actor) (dinner.Record, error) {
	if err := requireManager(actor); err != nil {
		return dinner.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dinner == nil {
		return dinner.Record{}, noActiveDinner()
	}
	rec := s.dinner.Finalize(s.newID(), s.clock.Now())
	if err := s.store.InsertDinner(ctx, rec); err != nil {
		return dinner.Record{}, persistErr("insert dinner", err)
	}
	s.dinner = nil
	s.log.Info().Str("dinner_id", rec.ID).Str("actor", actor.ID).Msg("dinner finalized")
	s.changed()
	return rec, nil
}

func (s *Service) Dinners(ctx context.Context) ([]dinner.Record, error) {
	recs, err := s.store.ListDinners(ctx)
	if err != nil {
		return nil, persistErr("list dinners", err)
	}
	return recs, nil
}
