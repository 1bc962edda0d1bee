package ledger

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaidStatus records whether a participant's result in a session has been settled
// with the club cashier.
type PaidStatus int

const (
	Unsettled PaidStatus = iota
	Settled
)

func (p PaidStatus) String() string {
	if p == Settled {
		return "settled"
	}
	return "unsettled"
}

func (p PaidStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the enum names as well as the legacy boolean/null form,
// where both null and false mean unsettled.
func (p *PaidStatus) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*p = Unsettled
	case bool:
		*p = Unsettled
		if v {
			*p = Settled
		}
	case string:
		switch v {
		case "settled":
			*p = Settled
		case "unsettled", "":
			*p = Unsettled
		default:
			return fmt.Errorf("unknown paid status %q", v)
		}
	default:
		return fmt.Errorf("unsupported paid status %s", string(b))
	}
	return nil
}

type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	PaymentKey string `json:"payment_key"`
	Active     bool   `json:"active"`
}

// Participant is a player's entry in one session.
type Participant struct {
	PlayerID      string     `json:"player_id"`
	Name          string     `json:"name"`
	BuyIn         int64      `json:"buy_in"`
	Rebuys        int        `json:"rebuys"`
	TotalInvested int64      `json:"total_invested"`
	FinalChips    int64      `json:"final_chips"`
	Paid          PaidStatus `json:"paid"`
}

// Profit is finalChips - totalInvested and may be negative.
func (p Participant) Profit() int64 {
	return p.FinalChips - p.TotalInvested
}

type Session struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CreatedAt    time.Time     `json:"created_at"`
	Version      int           `json:"version"`
	Participants []Participant `json:"participants"`
}

func (s Session) TotalInvested() int64 {
	return TotalInvested(s.Participants)
}

func (s Session) TotalDistributed() int64 {
	return TotalDistributed(s.Participants)
}

func (s Session) IsBalanced() bool {
	return IsBalanced(s.Participants)
}

// Date returns the date encoded in the session name, falling back to the
// creation time when the name does not parse.
func (s Session) Date() time.Time {
	if t, err := ParseDateName(s.Name); err == nil {
		return t
	}
	return s.CreatedAt
}

// Has reports whether playerID took part in the session.
func (s Session) Has(playerID string) bool {
	for _, p := range s.Participants {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

// GameDefaults seeds new live games and rebuy increments.
type GameDefaults struct {
	BuyInAmount int64 `json:"buy_in_amount"`
	RebuyAmount int64 `json:"rebuy_amount"`
}

func (d GameDefaults) Validate() error {
	if d.BuyInAmount < 0 || d.RebuyAmount < 0 {
		return &ValidationError{Kind: NegativeAmount, Detail: "game defaults must be non-negative"}
	}
	return nil
}
