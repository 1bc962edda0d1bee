package club

import (
	"context"

	"github.com/susu3304/pokerclub/internal/cashier"
	"github.com/susu3304/pokerclub/internal/ledger"
	"github.com/susu3304/pokerclub/internal/ranking"
)

func activePlayers(players []ledger.Player) []ledger.Player {
	var out []ledger.Player
	for _, p := range players {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) Cashier(ctx context.Context) (cashier.Report, error) {
	st, err := s.state(ctx)
	if err != nil {
		return cashier.Report{}, err
	}
	return cashier.Compute(st.Sessions, activePlayers(st.Players)), nil
}

// Settle marks every outstanding entry of the player as paid in a single write.
// It returns how many entries changed; a second call changes none.
func (s *Service) Settle(ctx context.Context, actor Actor, playerID string) (int, error) {
	if err := requireManager(actor); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.state(ctx)
	if err != nil {
		return 0, err
	}
	refs := cashier.Outstanding(st.Sessions, playerID)
	if len(refs) == 0 {
		return 0, nil
	}
	balance, _ := cashier.BalanceFor(st.Sessions, playerID)
	if err := s.store.MarkSettled(ctx, refs); err != nil {
		return 0, persistErr("settle", err)
	}
	s.log.Info().
		Str("player_id", playerID).
		Int("entries", len(refs)).
		Int64("balance", balance).
		Str("actor", actor.ID).
		Msg("balance settled")
	s.changed()
	return len(refs), nil
}

func (s *Service) AnnualRanking(ctx context.Context, year int) ([]ranking.Entry, error) {
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.Annual(st.Sessions, year), nil
}

func (s *Service) LastGameRanking(ctx context.Context) ([]ranking.Entry, error) {
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.LastGame(st.Sessions), nil
}

func (s *Service) Highlights(ctx context.Context) (ranking.Highlights, error) {
	st, err := s.state(ctx)
	if err != nil {
		return ranking.Highlights{}, err
	}
	return ranking.ComputeHighlights(st.Sessions), nil
}

func (s *Service) RankingYears(ctx context.Context) ([]int, error) {
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.Years(st.Sessions), nil
}

// CurrentYear is the default ranking window.
func (s *Service) CurrentYear() int {
	return s.clock.Now().Year()
}
