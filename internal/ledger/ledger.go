package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateNameLayout is the layout used to parse date-encoded session names.
const DateNameLayout = "2/1/06"

var dateNamePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}$`)

func TotalInvested(ps []Participant) int64 {
	var sum int64
	for _, p := range ps {
		sum += p.TotalInvested
	}
	return sum
}

func TotalDistributed(ps []Participant) int64 {
	var sum int64
	for _, p := range ps {
		sum += p.FinalChips
	}
	return sum
}

// IsBalanced reports whether chips handed back equal cash collected and
// something was actually played. Every save path goes through it.
func IsBalanced(ps []Participant) bool {
	invested := TotalInvested(ps)
	return invested > 0 && invested == TotalDistributed(ps)
}

// ParseDateName parses a D/M/YY session name.
func ParseDateName(name string) (time.Time, error) {
	name = strings.TrimSpace(name)
	if !dateNamePattern.MatchString(name) {
		return time.Time{}, &ValidationError{Kind: InvalidDateFormat, Detail: fmt.Sprintf("%q is not D/M/YY", name)}
	}
	t, err := time.Parse(DateNameLayout, name)
	if err != nil {
		return time.Time{}, &ValidationError{Kind: InvalidDateFormat, Detail: fmt.Sprintf("%q is not a calendar date", name)}
	}
	return t, nil
}

func ValidateDateName(name string) error {
	_, err := ParseDateName(name)
	return err
}

// FormatDateName renders t the way new live games are named.
func FormatDateName(t time.Time) string {
	return t.Format("02/01/06")
}

// ValidateForSave is the gate shared by ending a live game, saving a historic
// session and editing a stored one.
func ValidateForSave(name string, ps []Participant, requireDateName bool) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Kind: EmptyName, Detail: "session name is required"}
	}
	if requireDateName {
		if err := ValidateDateName(name); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if _, dup := seen[p.PlayerID]; dup {
			return &ValidationError{Kind: DuplicateParticipant, Detail: p.PlayerID}
		}
		seen[p.PlayerID] = struct{}{}
		if p.TotalInvested < 0 || p.FinalChips < 0 {
			return &ValidationError{Kind: NegativeAmount, Detail: p.PlayerID}
		}
	}
	invested := TotalInvested(ps)
	if invested == 0 {
		return &PreconditionError{Kind: ZeroInvestment, Detail: "nothing was invested"}
	}
	if !IsBalanced(ps) {
		return &ValidationError{
			Kind:   Unbalanced,
			Detail: fmt.Sprintf("invested %d but distributed %d", invested, TotalDistributed(ps)),
		}
	}
	return nil
}

// SettleZeroProfit marks every participant who neither won nor lost as settled.
func SettleZeroProfit(ps []Participant) {
	for i := range ps {
		if ps[i].Profit() == 0 {
			ps[i].Paid = Settled
		}
	}
}

// Appearances counts the sessions playerID took part in.
func Appearances(sessions []Session, playerID string) int {
	n := 0
	for _, s := range sessions {
		if s.Has(playerID) {
			n++
		}
	}
	return n
}

// ClampToNonNegative is the numeric input policy for chip and money fields:
// they never raise, negative values become 0.
func ClampToNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// ParseAmount reads a user-entered amount. Non-numeric input is 0 and fractional
// input is truncated.
func ParseAmount(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ClampToNonNegative(v)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 {
		return 0
	}
	return ClampToNonNegative(int64(f))
}

// LenientAmount decodes any JSON value through ParseAmount and never fails.
type LenientAmount int64

func (a *LenientAmount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	*a = LenientAmount(ParseAmount(s))
	return nil
}
