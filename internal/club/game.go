package club

import (
	"context"

	"github.com/susu3304/pokerclub/internal/ledger"
	"github.com/susu3304/pokerclub/internal/livegame"
)

func noActiveGame() error {
	return &ledger.PreconditionError{Kind: ledger.NoActiveGame, Detail: "no game in progress"}
}

// LiveGame returns a copy of the game in progress, or nil.
func (s *Service) LiveGame() *livegame.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live.Clone()
}

func (s *Service) StartGame(ctx context.Context, actor Actor, playerIDs []string) (*livegame.Game, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live != nil {
		return nil, &ledger.PreconditionError{Kind: ledger.GameAlreadyActive, Detail: "end or cancel the current game first"}
	}
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	players, err := resolvePlayers(st.Players, playerIDs)
	if err != nil {
		return nil, err
	}
	g, err := livegame.Start(ledger.FormatDateName(s.clock.Now()), players, st.Defaults)
	if err != nil {
		return nil, err
	}
	s.live = g
	s.log.Info().Str("game", g.Name).Int("players", len(g.Participants)).Str("actor", actor.ID).Msg("live game started")
	s.changed()
	return g.Clone(), nil
}

// mutateGame runs fn against the live game under the lock.
func (s *Service) mutateGame(actor Actor, fn func(g *livegame.Game) error) (*livegame.Game, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		return nil, noActiveGame()
	}
	if err := fn(s.live); err != nil {
		return nil, err
	}
	s.changed()
	return s.live.Clone(), nil
}

func (s *Service) AddRebuy(actor Actor, playerID string) (*livegame.Game, error) {
	return s.mutateGame(actor, func(g *livegame.Game) error {
		return g.AddRebuy(playerID)
	})
}

// RemoveRebuy reports false when the player had no rebuy to remove.
func (s *Service) RemoveRebuy(actor Actor, playerID string) (*livegame.Game, bool, error) {
	var removed bool
	g, err := s.mutateGame(actor, func(g *livegame.Game) error {
		var err error
		removed, err = g.RemoveRebuy(playerID)
		return err
	})
	return g, removed, err
}

func (s *Service) SetFinalChips(actor Actor, playerID string, value int64) (*livegame.Game, error) {
	return s.mutateGame(actor, func(g *livegame.Game) error {
		return g.SetFinalChips(playerID, value)
	})
}

func (s *Service) RenameGame(actor Actor, name string) (*livegame.Game, error) {
	return s.mutateGame(actor, func(g *livegame.Game) error {
		return g.Rename(name, s.requireDateNames)
	})
}

// AddPlayerToGame seats a player mid-game with the current default buy-in.
func (s *Service) AddPlayerToGame(ctx context.Context, actor Actor, playerID string) (*livegame.Game, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := findPlayer(st.Players, playerID)
	if !ok {
		return nil, ErrNotFound
	}
	return s.mutateGame(actor, func(g *livegame.Game) error {
		return g.AddPlayer(p, st.Defaults)
	})
}

func (s *Service) CancelGame(actor Actor) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		return noActiveGame()
	}
	s.log.Info().Str("game", s.live.Name).Str("actor", actor.ID).Msg("live game cancelled")
	s.live = nil
	s.changed()
	return nil
}

// EndGame freezes the live game into history. On any failure the game stays
// live and unchanged.
func (s *Service) EndGame(ctx context.Context, actor Actor) (ledger.Session, error) {
	if err := requireManager(actor); err != nil {
		return ledger.Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		return ledger.Session{}, noActiveGame()
	}
	sess, err := s.live.Freeze(s.newID(), s.clock.Now(), s.requireDateNames)
	if err != nil {
		return ledger.Session{}, err
	}
	if err := s.store.InsertSession(ctx, sess); err != nil {
		return ledger.Session{}, persistErr("insert session", err)
	}
	s.live = nil
	s.log.Info().
		Str("session_id", sess.ID).
		Str("name", sess.Name).
		Int64("pot", sess.TotalInvested()).
		Str("actor", actor.ID).
		Msg("live game ended")
	s.changed()
	return sess, nil
}
