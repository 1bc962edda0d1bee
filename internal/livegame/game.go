package livegame

import (
	"time"

	"github.com/susu3304/pokerclub/internal/ledger"
)

// Game is the in-progress poker session. It is plain state: the owner is
// responsible for serialising access and for keeping at most one alive.
type Game struct {
	Name         string               `json:"name"`
	Defaults     ledger.GameDefaults  `json:"defaults"`
	Participants []ledger.Participant `json:"participants"`
}

// Start seats every distinct player with one buy-in. The rebuy unit in defaults
// stays fixed for the lifetime of the game.
func Start(name string, players []ledger.Player, defaults ledger.GameDefaults) (*Game, error) {
	if len(players) == 0 {
		return nil, &ledger.PreconditionError{Kind: ledger.NoPlayers, Detail: "select at least one player"}
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	g := &Game{Name: name, Defaults: defaults}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		g.Participants = append(g.Participants, seat(p, defaults.BuyInAmount))
	}
	return g, nil
}

func seat(p ledger.Player, buyIn int64) ledger.Participant {
	return ledger.Participant{
		PlayerID:      p.ID,
		Name:          p.Name,
		BuyIn:         buyIn,
		TotalInvested: buyIn,
	}
}

func (g *Game) participant(playerID string) (*ledger.Participant, error) {
	for i := range g.Participants {
		if g.Participants[i].PlayerID == playerID {
			return &g.Participants[i], nil
		}
	}
	return nil, &ledger.PreconditionError{Kind: ledger.UnknownParticipant, Detail: playerID}
}

func (g *Game) AddRebuy(playerID string) error {
	p, err := g.participant(playerID)
	if err != nil {
		return err
	}
	p.Rebuys++
	p.TotalInvested += g.Defaults.RebuyAmount
	return nil
}

// RemoveRebuy undoes one AddRebuy. It reports false and changes nothing when the
// player has no rebuys left.
func (g *Game) RemoveRebuy(playerID string) (bool, error) {
	p, err := g.participant(playerID)
	if err != nil {
		return false, err
	}
	if p.Rebuys == 0 {
		return false, nil
	}
	p.Rebuys--
	p.TotalInvested -= g.Defaults.RebuyAmount
	return true, nil
}

func (g *Game) SetFinalChips(playerID string, value int64) error {
	p, err := g.participant(playerID)
	if err != nil {
		return err
	}
	p.FinalChips = ledger.ClampToNonNegative(value)
	return nil
}

func (g *Game) Rename(name string, requireDateName bool) error {
	if requireDateName {
		if err := ledger.ValidateDateName(name); err != nil {
			return err
		}
	}
	g.Name = name
	return nil
}

// AddPlayer seats a late arrival with one buy-in from defaults.
func (g *Game) AddPlayer(p ledger.Player, defaults ledger.GameDefaults) error {
	if _, err := g.participant(p.ID); err == nil {
		return &ledger.PreconditionError{Kind: ledger.ParticipantExists, Detail: p.ID}
	}
	g.Participants = append(g.Participants, seat(p, ledger.ClampToNonNegative(defaults.BuyInAmount)))
	return nil
}

func (g *Game) TotalInvested() int64 {
	return ledger.TotalInvested(g.Participants)
}

func (g *Game) TotalDistributed() int64 {
	return ledger.TotalDistributed(g.Participants)
}

func (g *Game) IsBalanced() bool {
	return ledger.IsBalanced(g.Participants)
}

// Freeze validates the game and returns it as an immutable session. Players with
// zero profit come out settled. The game itself is left untouched so a failed
// save can be retried.
func (g *Game) Freeze(id string, now time.Time, requireDateName bool) (ledger.Session, error) {
	if err := ledger.ValidateForSave(g.Name, g.Participants, requireDateName); err != nil {
		return ledger.Session{}, err
	}
	ps := make([]ledger.Participant, len(g.Participants))
	copy(ps, g.Participants)
	for i := range ps {
		ps[i].Paid = ledger.Unsettled
	}
	ledger.SettleZeroProfit(ps)
	return ledger.Session{
		ID:           id,
		Name:         g.Name,
		CreatedAt:    now,
		Version:      1,
		Participants: ps,
	}, nil
}

// Clone returns a deep copy safe to hand to readers.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Participants = make([]ledger.Participant, len(g.Participants))
	copy(c.Participants, g.Participants)
	return &c
}
