package ledger

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participants(invested, chips []int64) []Participant {
	ps := make([]Participant, len(invested))
	for i := range invested {
		ps[i] = Participant{
			PlayerID:      string(rune('a' + i)),
			TotalInvested: invested[i],
			FinalChips:    chips[i],
		}
	}
	return ps
}

func TestProfitIdentity(t *testing.T) {
	tests := []struct {
		invested, chips, want int64
	}{
		{100, 150, 50},
		{100, 50, -50},
		{100, 100, 0},
		{0, 0, 0},
		{300, 0, -300},
	}
	for _, tt := range tests {
		p := Participant{TotalInvested: tt.invested, FinalChips: tt.chips}
		assert.Equal(t, tt.want, p.Profit())
		assert.Equal(t, p.FinalChips-p.TotalInvested, p.Profit())
	}
}

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name     string
		invested []int64
		chips    []int64
		want     bool
	}{
		{"balanced", []int64{100, 100, 100}, []int64{50, 150, 100}, true},
		{"short by ten", []int64{100, 100, 100}, []int64{50, 150, 90}, false},
		{"zero activity", []int64{0, 0}, []int64{0, 0}, false},
		{"empty", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{Participants: participants(tt.invested, tt.chips)}
			assert.Equal(t, tt.want, s.IsBalanced())
		})
	}
}

func TestValidateForSave(t *testing.T) {
	balanced := participants([]int64{100, 100, 100}, []int64{50, 150, 100})

	require.NoError(t, ValidateForSave("14/10/26", balanced, true))
	require.NoError(t, ValidateForSave("friday game", balanced, false))

	var verr *ValidationError
	err := ValidateForSave("14/10/26", participants([]int64{100, 100, 100}, []int64{50, 150, 90}), true)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, Unbalanced, verr.Kind)

	err = ValidateForSave("friday game", balanced, true)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, InvalidDateFormat, verr.Kind)

	err = ValidateForSave("  ", balanced, false)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, EmptyName, verr.Kind)

	dup := append([]Participant{}, balanced...)
	dup[1].PlayerID = dup[0].PlayerID
	err = ValidateForSave("14/10/26", dup, true)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, DuplicateParticipant, verr.Kind)

	var perr *PreconditionError
	err = ValidateForSave("14/10/26", participants([]int64{0, 0}, []int64{0, 0}), true)
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ZeroInvestment, perr.Kind)
}

func TestParseDateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"padded", "05/03/24", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"unpadded", "5/3/24", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"four digit year", "05/03/2024", time.Time{}, false},
		{"not a date", "31/02/24", time.Time{}, false},
		{"month out of range", "01/13/24", time.Time{}, false},
		{"free text", "game night", time.Time{}, false},
		{"length only", "12345678", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateName(tt.input)
			if !tt.ok {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, InvalidDateFormat, verr.Kind)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestSessionDateFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	s := Session{Name: "summer special", CreatedAt: created}
	assert.Equal(t, created, s.Date())

	s.Name = "02/01/25"
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), s.Date())
}

func TestSettleZeroProfit(t *testing.T) {
	ps := participants([]int64{100, 100, 100}, []int64{50, 150, 100})
	SettleZeroProfit(ps)
	assert.Equal(t, Unsettled, ps[0].Paid)
	assert.Equal(t, Unsettled, ps[1].Paid)
	assert.Equal(t, Settled, ps[2].Paid)
}

func TestAppearances(t *testing.T) {
	sessions := []Session{
		{Participants: []Participant{{PlayerID: "a"}, {PlayerID: "b"}}},
		{Participants: []Participant{{PlayerID: "a"}}},
	}
	assert.Equal(t, 2, Appearances(sessions, "a"))
	assert.Equal(t, 1, Appearances(sessions, "b"))
	assert.Equal(t, 0, Appearances(sessions, "c"))
}

func TestParseAmount(t *testing.T) {
	tests := map[string]int64{
		"150":                   150,
		" 42 ":                  42,
		"-10":                   0,
		"abc":                   0,
		"":                      0,
		"12.9":                  12,
		"-3.5":                  0,
		"NaN":                   0,
		"1e400":                 0,
		"9223372036854775807":   math.MaxInt64,
		"9223372036854775808":   0,
		"9223372036854775808.0": 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAmount(in), "input %q", in)
	}
}

func TestLenientAmountNeverFails(t *testing.T) {
	var body struct {
		A LenientAmount `json:"a"`
		B LenientAmount `json:"b"`
		C LenientAmount `json:"c"`
		D LenientAmount `json:"d"`
		E LenientAmount `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a": 120, "b": "75", "c": -5, "d": "x", "e": null}`), &body)
	require.NoError(t, err)
	assert.Equal(t, LenientAmount(120), body.A)
	assert.Equal(t, LenientAmount(75), body.B)
	assert.Equal(t, LenientAmount(0), body.C)
	assert.Equal(t, LenientAmount(0), body.D)
	assert.Equal(t, LenientAmount(0), body.E)
}

func TestPaidStatusJSON(t *testing.T) {
	tests := map[string]PaidStatus{
		`true`:        Settled,
		`false`:       Unsettled,
		`null`:        Unsettled,
		`"settled"`:   Settled,
		`"unsettled"`: Unsettled,
	}
	for in, want := range tests {
		var p PaidStatus
		require.NoError(t, json.Unmarshal([]byte(in), &p), in)
		assert.Equal(t, want, p, in)
	}

	b, err := json.Marshal(Participant{Paid: Settled})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"paid":"settled"`)
}

func TestGameDefaultsValidate(t *testing.T) {
	assert.NoError(t, GameDefaults{BuyInAmount: 20, RebuyAmount: 10}.Validate())
	assert.Error(t, GameDefaults{BuyInAmount: -1}.Validate())
}
