package club

import (
	"context"

	"github.com/susu3304/pokerclub/internal/ledger"
)

// EntryInput is one participant row of a session typed in by hand.
type EntryInput struct {
	PlayerID      string
	BuyIn         int64
	Rebuys        int
	TotalInvested int64
	FinalChips    int64
}

type SessionDraft struct {
	Name    string
	Entries []EntryInput
}

func (s *Service) buildParticipants(players []ledger.Player, entries []EntryInput) ([]ledger.Participant, error) {
	ps := make([]ledger.Participant, 0, len(entries))
	for _, e := range entries {
		p, ok := findPlayer(players, e.PlayerID)
		if !ok {
			return nil, &ledger.PreconditionError{Kind: ledger.UnknownParticipant, Detail: e.PlayerID}
		}
		rebuys := e.Rebuys
		if rebuys < 0 {
			rebuys = 0
		}
		ps = append(ps, ledger.Participant{
			PlayerID:      p.ID,
			Name:          p.Name,
			BuyIn:         ledger.ClampToNonNegative(e.BuyIn),
			Rebuys:        rebuys,
			TotalInvested: ledger.ClampToNonNegative(e.TotalInvested),
			FinalChips:    ledger.ClampToNonNegative(e.FinalChips),
		})
	}
	return ps, nil
}

// carrySettlement keeps a stored entry's paid status when its profit is
// unchanged by the edit. Settlement is only ever granted by Settle.
func carrySettlement(prev []ledger.Participant, ps []ledger.Participant) {
	byID := make(map[string]ledger.Participant, len(prev))
	for _, p := range prev {
		byID[p.PlayerID] = p
	}
	for i := range ps {
		old, ok := byID[ps[i].PlayerID]
		if ok && old.Profit() == ps[i].Profit() {
			ps[i].Paid = old.Paid
		}
	}
}

func (s *Service) Sessions(ctx context.Context) ([]ledger.Session, error) {
	st, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	return st.Sessions, nil
}

func (s *Service) Session(ctx context.Context, id string) (ledger.Session, error) {
	st, err := s.state(ctx)
	if err != nil {
		return ledger.Session{}, err
	}
	for _, sess := range st.Sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return ledger.Session{}, ErrNotFound
}

// SaveHistoricSession records a past game entered directly, under the same
// balance rule as ending a live game.
func (s *Service) SaveHistoricSession(ctx context.Context, actor Actor, draft SessionDraft) (ledger.Session, error) {
	if err := requireManager(actor); err != nil {
		return ledger.Session{}, err
	}
	st, err := s.state(ctx)
	if err != nil {
		return ledger.Session{}, err
	}
	ps, err := s.buildParticipants(st.Players, draft.Entries)
	if err != nil {
		return ledger.Session{}, err
	}
	if err := ledger.ValidateForSave(draft.Name, ps, s.requireDateNames); err != nil {
		return ledger.Session{}, err
	}
	ledger.SettleZeroProfit(ps)
	sess := ledger.Session{
		ID:           s.newID(),
		Name:         draft.Name,
		CreatedAt:    s.clock.Now(),
		Version:      1,
		Participants: ps,
	}
	if err := s.store.InsertSession(ctx, sess); err != nil {
		return ledger.Session{}, persistErr("insert session", err)
	}
	s.log.Info().Str("session_id", sess.ID).Str("name", sess.Name).Str("actor", actor.ID).Msg("historic session saved")
	s.changed()
	return sess, nil
}

// EditSession replaces a stored session's name and entries. expectedVersion 0
// skips the concurrency check and keeps last-write-wins behaviour.
func (s *Service) EditSession(ctx context.Context, actor Actor, id string, expectedVersion int, draft SessionDraft) (ledger.Session, error) {
	if err := requireManager(actor); err != nil {
		return ledger.Session{}, err
	}
	st, err := s.state(ctx)
	if err != nil {
		return ledger.Session{}, err
	}
	var current *ledger.Session
	for i := range st.Sessions {
		if st.Sessions[i].ID == id {
			current = &st.Sessions[i]
			break
		}
	}
	if current == nil {
		return ledger.Session{}, ErrNotFound
	}
	if expectedVersion == 0 {
		expectedVersion = current.Version
	}
	if expectedVersion != current.Version {
		return ledger.Session{}, ErrVersionConflict
	}
	ps, err := s.buildParticipants(st.Players, draft.Entries)
	if err != nil {
		return ledger.Session{}, err
	}
	if err := ledger.ValidateForSave(draft.Name, ps, s.requireDateNames); err != nil {
		return ledger.Session{}, err
	}
	carrySettlement(current.Participants, ps)
	ledger.SettleZeroProfit(ps)
	updated := ledger.Session{
		ID:           current.ID,
		Name:         draft.Name,
		CreatedAt:    current.CreatedAt,
		Version:      current.Version + 1,
		Participants: ps,
	}
	if err := s.store.UpdateSession(ctx, updated, expectedVersion); err != nil {
		return ledger.Session{}, persistErr("update session", err)
	}
	s.log.Info().Str("session_id", id).Int("version", updated.Version).Str("actor", actor.ID).Msg("session edited")
	s.changed()
	return updated, nil
}

func (s *Service) DeleteSession(ctx context.Context, actor Actor, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return persistErr("delete session", err)
	}
	s.log.Info().Str("session_id", id).Str("actor", actor.ID).Msg("session deleted")
	s.changed()
	return nil
}
