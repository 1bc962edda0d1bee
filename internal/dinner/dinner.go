package dinner

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/susu3304/pokerclub/internal/ledger"
)

type Participant struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	IsEating   bool   `json:"is_eating"`
	IsDrinking bool   `json:"is_drinking"`
}

// Dinner is the in-progress cost split. Like a live game there is at most one.
type Dinner struct {
	Name         string          `json:"name"`
	Date         time.Time       `json:"date"`
	FoodCost     decimal.Decimal `json:"food_cost"`
	DrinkCost    decimal.Decimal `json:"drink_cost"`
	Participants []Participant   `json:"participants"`
}

type Share struct {
	PlayerID string          `json:"player_id"`
	Name     string          `json:"name"`
	Food     decimal.Decimal `json:"food"`
	Drink    decimal.Decimal `json:"drink"`
	Total    decimal.Decimal `json:"total"`
}

// Record is a finalized dinner.
type Record struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Date         time.Time       `json:"date"`
	FoodCost     decimal.Decimal `json:"food_cost"`
	DrinkCost    decimal.Decimal `json:"drink_cost"`
	Participants []Participant   `json:"participants"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PerPersonCost splits total across count people; nobody opted in means 0.
func PerPersonCost(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

// Start lists every distinct player with both pools opted out.
func Start(name string, date time.Time, players []ledger.Player) (*Dinner, error) {
	if len(players) == 0 {
		return nil, &ledger.PreconditionError{Kind: ledger.NoPlayers, Detail: "select at least one guest"}
	}
	d := &Dinner{Name: name, Date: date, FoodCost: decimal.Zero, DrinkCost: decimal.Zero}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		d.Participants = append(d.Participants, Participant{PlayerID: p.ID, Name: p.Name})
	}
	return d, nil
}

func (d *Dinner) participant(playerID string) (*Participant, error) {
	for i := range d.Participants {
		if d.Participants[i].PlayerID == playerID {
			return &d.Participants[i], nil
		}
	}
	return nil, &ledger.PreconditionError{Kind: ledger.UnknownParticipant, Detail: playerID}
}

// SetCosts replaces both pools, clamping negatives to zero.
func (d *Dinner) SetCosts(food, drink decimal.Decimal) {
	d.FoodCost = clamp(food)
	d.DrinkCost = clamp(drink)
}

func (d *Dinner) Rename(name string) {
	d.Name = name
}

func (d *Dinner) SetFlags(playerID string, eating, drinking bool) error {
	p, err := d.participant(playerID)
	if err != nil {
		return err
	}
	p.IsEating = eating
	p.IsDrinking = drinking
	return nil
}

func (d *Dinner) counts() (eaters, drinkers int) {
	for _, p := range d.Participants {
		if p.IsEating {
			eaters++
		}
		if p.IsDrinking {
			drinkers++
		}
	}
	return eaters, drinkers
}

func (d *Dinner) FoodPerPerson() decimal.Decimal {
	eaters, _ := d.counts()
	return PerPersonCost(d.FoodCost, eaters)
}

func (d *Dinner) DrinkPerPerson() decimal.Decimal {
	_, drinkers := d.counts()
	return PerPersonCost(d.DrinkCost, drinkers)
}

func (d *Dinner) AmountOwed(p Participant) decimal.Decimal {
	owed := decimal.Zero
	if p.IsEating {
		owed = owed.Add(d.FoodPerPerson())
	}
	if p.IsDrinking {
		owed = owed.Add(d.DrinkPerPerson())
	}
	return owed
}

// Shares reports each guest's amount rounded to cents.
func (d *Dinner) Shares() []Share {
	food, drink := d.FoodPerPerson(), d.DrinkPerPerson()
	out := make([]Share, 0, len(d.Participants))
	for _, p := range d.Participants {
		s := Share{PlayerID: p.PlayerID, Name: p.Name, Food: decimal.Zero, Drink: decimal.Zero}
		if p.IsEating {
			s.Food = food
		}
		if p.IsDrinking {
			s.Drink = drink
		}
		s.Total = s.Food.Add(s.Drink).Round(2)
		s.Food = s.Food.Round(2)
		s.Drink = s.Drink.Round(2)
		out = append(out, s)
	}
	return out
}

// Finalize freezes the dinner. There is no balance rule for dinners.
func (d *Dinner) Finalize(id string, now time.Time) Record {
	ps := make([]Participant, len(d.Participants))
	copy(ps, d.Participants)
	return Record{
		ID:           id,
		Name:         d.Name,
		Date:         d.Date,
		FoodCost:     d.FoodCost,
		DrinkCost:    d.DrinkCost,
		Participants: ps,
		CreatedAt:    now,
	}
}

func (d *Dinner) Clone() *Dinner {
	if d == nil {
		return nil
	}
	c := *d
	c.Participants = make([]Participant, len(d.Participants))
	copy(c.Participants, d.Participants)
	return &c
}

// Shares recomputes a finalized dinner's split.
func (r Record) Shares() []Share {
	d := Dinner{Name: r.Name, Date: r.Date, FoodCost: r.FoodCost, DrinkCost: r.DrinkCost, Participants: r.Participants}
	return d.Shares()
}

func clamp(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// ParseMoney reads a user-entered cost; anything unparseable or negative is 0.
func ParseMoney(raw string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return clamp(v)
}

// LenientMoney decodes any JSON value through ParseMoney and never fails.
type LenientMoney decimal.Decimal

func (m *LenientMoney) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	*m = LenientMoney(ParseMoney(s))
	return nil
}

func (m LenientMoney) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}
