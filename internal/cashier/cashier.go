package cashier

import (
	"sort"
	"time"

	"github.com/susu3304/pokerclub/internal/ledger"
)

// UnpaidEntry is one session result still owed between a player and the club.
type UnpaidEntry struct {
	SessionID   string    `json:"session_id"`
	SessionName string    `json:"session_name"`
	Date        time.Time `json:"date"`
	Amount      int64     `json:"amount"`
}

// Balance is positive when the club owes the player and negative when the player
// owes the club.
type Balance struct {
	Player  ledger.Player `json:"player"`
	Balance int64         `json:"balance"`
	Unpaid  []UnpaidEntry `json:"unpaid_sessions"`
}

type Report struct {
	Balances       []Balance `json:"balances"`
	TotalToReceive int64     `json:"total_to_receive"`
	TotalToPayOut  int64     `json:"total_to_pay_out"`
}

// EntryRef addresses one participant entry inside a stored session.
type EntryRef struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
}

func outstanding(p ledger.Participant) bool {
	return p.Paid != ledger.Settled && p.Profit() != 0
}

// ComputeBalances sums every unsettled non-zero result per player. Active
// players always appear, even with nothing outstanding.
func ComputeBalances(sessions []ledger.Session, active []ledger.Player) []Balance {
	byID := make(map[string]*Balance)
	var order []string
	get := func(id string) *Balance {
		b, ok := byID[id]
		if !ok {
			b = &Balance{Player: ledger.Player{ID: id}, Unpaid: []UnpaidEntry{}}
			byID[id] = b
			order = append(order, id)
		}
		return b
	}

	for _, s := range sessions {
		date := s.Date()
		for _, p := range s.Participants {
			if !outstanding(p) {
				continue
			}
			b := get(p.PlayerID)
			if b.Player.Name == "" {
				b.Player.Name = p.Name
			}
			b.Balance += p.Profit()
			b.Unpaid = append(b.Unpaid, UnpaidEntry{
				SessionID:   s.ID,
				SessionName: s.Name,
				Date:        date,
				Amount:      p.Profit(),
			})
		}
	}
	for _, pl := range active {
		b := get(pl.ID)
		b.Player = pl
	}

	out := make([]Balance, 0, len(order))
	for _, id := range order {
		b := byID[id]
		sort.SliceStable(b.Unpaid, func(i, j int) bool {
			return b.Unpaid[i].Date.After(b.Unpaid[j].Date)
		})
		out = append(out, *b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].Player.ID < out[j].Player.ID
	})
	return out
}

// Totals reports cash the club must collect and cash it must hand out. They are
// kept apart because they flow in opposite directions.
func Totals(balances []Balance) (toReceive, toPayOut int64) {
	for _, b := range balances {
		switch {
		case b.Balance < 0:
			toReceive += -b.Balance
		case b.Balance > 0:
			toPayOut += b.Balance
		}
	}
	return toReceive, toPayOut
}

func Compute(sessions []ledger.Session, active []ledger.Player) Report {
	balances := ComputeBalances(sessions, active)
	r := Report{Balances: balances}
	r.TotalToReceive, r.TotalToPayOut = Totals(balances)
	return r
}

// BalanceFor returns a single player's outstanding balance and entries.
func BalanceFor(sessions []ledger.Session, playerID string) (int64, []UnpaidEntry) {
	for _, b := range ComputeBalances(sessions, nil) {
		if b.Player.ID == playerID {
			return b.Balance, b.Unpaid
		}
	}
	return 0, nil
}

// Outstanding lists the entries Settle would mark for playerID.
func Outstanding(sessions []ledger.Session, playerID string) []EntryRef {
	var refs []EntryRef
	for _, s := range sessions {
		for _, p := range s.Participants {
			if p.PlayerID == playerID && outstanding(p) {
				refs = append(refs, EntryRef{SessionID: s.ID, PlayerID: playerID})
			}
		}
	}
	return refs
}

// MarkSettled returns a copy of sessions with every referenced entry marked
// settled. The input is not mutated.
func MarkSettled(sessions []ledger.Session, refs []EntryRef) []ledger.Session {
	marked := make(map[EntryRef]bool, len(refs))
	for _, r := range refs {
		marked[r] = true
	}
	out := make([]ledger.Session, len(sessions))
	for i, s := range sessions {
		out[i] = s
		ps := make([]ledger.Participant, len(s.Participants))
		copy(ps, s.Participants)
		for j := range ps {
			if marked[EntryRef{SessionID: s.ID, PlayerID: ps[j].PlayerID}] {
				ps[j].Paid = ledger.Settled
			}
		}
		out[i].Participants = ps
	}
	return out
}
