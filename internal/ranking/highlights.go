package ranking

import (
	"github.com/susu3304/pokerclub/internal/ledger"
)

type SingleWin struct {
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name"`
	Profit      int64  `json:"profit"`
}

type Streak struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
}

// Highlights are computed over the whole history. Ties go to the lowest
// player id; for the biggest single win, then to the earlier session.
type Highlights struct {
	TotalPot             int64      `json:"total_pot"`
	BiggestSingleWin     *SingleWin `json:"biggest_single_win"`
	TopCumulativeWinner  *Entry     `json:"top_cumulative_winner"`
	MostConsistentWinner *Streak    `json:"most_consistent_winner"`
}

func ComputeHighlights(sessions []ledger.Session) Highlights {
	var h Highlights
	t := newTally()

	for _, s := range chronological(sessions) {
		for _, p := range s.Participants {
			h.TotalPot += p.TotalInvested
			t.add(p)

			profit := p.Profit()
			if profit <= 0 {
				continue
			}
			best := h.BiggestSingleWin
			if best == nil || profit > best.Profit || (profit == best.Profit && p.PlayerID < best.PlayerID) {
				h.BiggestSingleWin = &SingleWin{
					PlayerID:    p.PlayerID,
					Name:        p.Name,
					SessionID:   s.ID,
					SessionName: s.Name,
					Profit:      profit,
				}
			}
		}
	}

	if ranked := t.sorted(); len(ranked) > 0 {
		top := ranked[0]
		h.TopCumulativeWinner = &top
	}

	for id, wins := range t.wins {
		cur := h.MostConsistentWinner
		if cur == nil || wins > cur.Wins || (wins == cur.Wins && id < cur.PlayerID) {
			h.MostConsistentWinner = &Streak{PlayerID: id, Name: t.entries[id].Name, Wins: wins}
		}
	}
	return h
}
