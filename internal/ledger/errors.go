package ledger

import "fmt"

type ValidationKind string

const (
	InvalidDateFormat    ValidationKind = "invalid_date_format"
	Unbalanced           ValidationKind = "unbalanced"
	NegativeAmount       ValidationKind = "negative_amount"
	DuplicateParticipant ValidationKind = "duplicate_participant"
	EmptyName            ValidationKind = "empty_name"
)

// ValidationError is a user-correctable input problem. The action that raised it
// has not changed any state.
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validation failed: %s", e.Kind)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Kind, e.Detail)
}

type PreconditionKind string

const (
	GameAlreadyActive   PreconditionKind = "game_already_active"
	NoActiveGame        PreconditionKind = "no_active_game"
	DinnerAlreadyActive PreconditionKind = "dinner_already_active"
	NoActiveDinner      PreconditionKind = "no_active_dinner"
	NoPlayers           PreconditionKind = "no_players"
	ZeroInvestment      PreconditionKind = "zero_investment"
	UnknownParticipant  PreconditionKind = "unknown_participant"
	ParticipantExists   PreconditionKind = "participant_exists"
)

// PreconditionError means the operation is not allowed in the current state.
type PreconditionError struct {
	Kind   PreconditionKind
	Detail string
}

func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("precondition failed: %s", e.Kind)
	}
	return fmt.Sprintf("precondition failed: %s: %s", e.Kind, e.Detail)
}

// ReferentialIntegrityError is returned when deleting a player still referenced
// by historical sessions.
type ReferentialIntegrityError struct {
	PlayerID string
	Sessions int
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("player %s appears in %d session(s); deactivate instead of deleting", e.PlayerID, e.Sessions)
}

// PersistenceError wraps a failure of the backing store after validation passed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
