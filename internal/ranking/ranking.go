package ranking

import (
	"sort"

	"github.com/susu3304/pokerclub/internal/ledger"
)

type Entry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Profit   int64  `json:"profit"`
}

// chronological returns sessions oldest first so that later names win.
func chronological(sessions []ledger.Session) []ledger.Session {
	out := make([]ledger.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date(), out[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

type tally struct {
	entries map[string]*Entry
	wins    map[string]int
}

func newTally() *tally {
	return &tally{entries: make(map[string]*Entry), wins: make(map[string]int)}
}

func (t *tally) add(p ledger.Participant) {
	e, ok := t.entries[p.PlayerID]
	if !ok {
		e = &Entry{PlayerID: p.PlayerID}
		t.entries[p.PlayerID] = e
	}
	if p.Name != "" {
		e.Name = p.Name
	}
	e.Profit += p.Profit()
	if p.Profit() > 0 {
		t.wins[p.PlayerID]++
	}
}

func (t *tally) sorted() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Profit != out[j].Profit {
			return out[i].Profit > out[j].Profit
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Annual ranks players by cumulative profit over the sessions dated in year.
func Annual(sessions []ledger.Session, year int) []Entry {
	t := newTally()
	for _, s := range chronological(sessions) {
		if s.Date().Year() != year {
			continue
		}
		for _, p := range s.Participants {
			t.add(p)
		}
	}
	return t.sorted()
}

// Latest returns the most recent session, if any.
func Latest(sessions []ledger.Session) (ledger.Session, bool) {
	if len(sessions) == 0 {
		return ledger.Session{}, false
	}
	ordered := chronological(sessions)
	return ordered[len(ordered)-1], true
}

// LastGame ranks the participants of the most recent session by that
// session's profit alone.
func LastGame(sessions []ledger.Session) []Entry {
	s, ok := Latest(sessions)
	if !ok {
		return []Entry{}
	}
	t := newTally()
	for _, p := range s.Participants {
		t.add(p)
	}
	return t.sorted()
}

// Years lists the distinct session years, newest first.
func Years(sessions []ledger.Session) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, s := range sessions {
		y := s.Date().Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
