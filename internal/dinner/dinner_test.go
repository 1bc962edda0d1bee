package dinner

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/pokerclub/internal/ledger"
)

func guests(n int) []ledger.Player {
	names := []string{"Ana", "Bruno", "Carla", "Dario", "Elena"}
	out := make([]ledger.Player, n)
	for i := 0; i < n; i++ {
		out[i] = ledger.Player{ID: names[i][:1], Name: names[i]}
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPerPersonCost(t *testing.T) {
	assert.True(t, PerPersonCost(dec("100"), 4).Equal(dec("25")))
	assert.True(t, PerPersonCost(dec("100"), 0).Equal(decimal.Zero))
	assert.True(t, PerPersonCost(dec("0"), 3).Equal(decimal.Zero))
}

func TestFoodSplitAmongEaters(t *testing.T) {
	d, err := Start("club dinner", time.Now(), guests(4))
	require.NoError(t, err)
	d.SetCosts(dec("100"), decimal.Zero)
	require.NoError(t, d.SetFlags("A", true, false))
	require.NoError(t, d.SetFlags("B", true, true))
	require.NoError(t, d.SetFlags("C", false, true))

	for _, p := range d.Participants {
		owed := d.AmountOwed(p)
		switch p.PlayerID {
		case "A", "B":
			assert.True(t, owed.Equal(dec("50")), "%s owes %s", p.PlayerID, owed)
		default:
			assert.True(t, owed.Equal(decimal.Zero), "%s owes %s", p.PlayerID, owed)
		}
	}
}

func TestNoEatersMeansZeroFoodCost(t *testing.T) {
	d, err := Start("club dinner", time.Now(), guests(3))
	require.NoError(t, err)
	d.SetCosts(dec("90"), dec("30"))
	require.NoError(t, d.SetFlags("A", false, true))

	assert.True(t, d.FoodPerPerson().Equal(decimal.Zero))
	assert.True(t, d.AmountOwed(d.Participants[0]).Equal(dec("30")))
}

func TestSharesCombinePools(t *testing.T) {
	d, err := Start("club dinner", time.Now(), guests(3))
	require.NoError(t, err)
	d.SetCosts(dec("100"), dec("20"))
	require.NoError(t, d.SetFlags("A", true, false))
	require.NoError(t, d.SetFlags("B", true, false))
	require.NoError(t, d.SetFlags("C", true, true))

	shares := d.Shares()
	require.Len(t, shares, 3)
	assert.Equal(t, "33.33", shares[0].Total.String())
	assert.Equal(t, "53.33", shares[2].Total.String())
	assert.Equal(t, "20", shares[2].Drink.String())
}

func TestSetCostsClamps(t *testing.T) {
	d, err := Start("club dinner", time.Now(), guests(1))
	require.NoError(t, err)
	d.SetCosts(dec("-5"), dec("12.5"))
	assert.True(t, d.FoodCost.Equal(decimal.Zero))
	assert.True(t, d.DrinkCost.Equal(dec("12.5")))
}

func TestStartRequiresGuests(t *testing.T) {
	_, err := Start("x", time.Now(), nil)
	var perr *ledger.PreconditionError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ledger.NoPlayers, perr.Kind)
}

func TestUnknownGuest(t *testing.T) {
	d, err := Start("x", time.Now(), guests(2))
	require.NoError(t, err)
	var perr *ledger.PreconditionError
	require.True(t, errors.As(d.SetFlags("Z", true, false), &perr))
	assert.Equal(t, ledger.UnknownParticipant, perr.Kind)
}

func TestFinalizeCopies(t *testing.T) {
	d, err := Start("x", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), guests(2))
	require.NoError(t, err)
	d.SetCosts(dec("40"), decimal.Zero)
	require.NoError(t, d.SetFlags("A", true, false))

	rec := d.Finalize("d1", time.Now())
	require.NoError(t, d.SetFlags("B", true, false))

	assert.Equal(t, "d1", rec.ID)
	assert.False(t, rec.Participants[1].IsEating)
	assert.Equal(t, "40", rec.Shares()[0].Total.String())
}

func TestLenientMoney(t *testing.T) {
	var body struct {
		Food  LenientMoney `json:"food"`
		Drink LenientMoney `json:"drink"`
		Tip   LenientMoney `json:"tip"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"food": 45.5, "drink": "abc", "tip": "-3"}`), &body))
	assert.True(t, body.Food.Decimal().Equal(dec("45.5")))
	assert.True(t, body.Drink.Decimal().Equal(decimal.Zero))
	assert.True(t, body.Tip.Decimal().Equal(decimal.Zero))
}
