package types

import (
	"regexp"
	"time"
)

// Unit statuses. A unit starts available and moves between statuses only
// as a side effect of circulation events, never by direct client writes.
const (
	UnitStatusAvailable   = "available"
	UnitStatusLoaned      = "loaned"
	UnitStatusReserved    = "reserved"
	UnitStatusUnderRepair = "under-repair"
	UnitStatusLost        = "lost"
)

// validUnitStatuses is the set of recognized unit status values.
var validUnitStatuses = map[string]bool{
	UnitStatusAvailable:   true,
	UnitStatusLoaned:      true,
	UnitStatusReserved:    true,
	UnitStatusUnderRepair: true,
	UnitStatusLost:        true,
}

// unitTransitions is the allowed-transition table. Lost is terminal:
// a lost unit accepts no further transitions.
var unitTransitions = map[string]map[string]bool{
	UnitStatusAvailable: {
		UnitStatusLoaned:      true, // checkout approval
		UnitStatusReserved:    true, // request approval pending handoff
		UnitStatusUnderRepair: true, // damage report
		UnitStatusLost:        true,
	},
	UnitStatusLoaned: {
		UnitStatusAvailable:   true, // return
		UnitStatusUnderRepair: true, // damage report force-closes the loan
		UnitStatusLost:        true,
	},
	UnitStatusReserved: {
		UnitStatusLoaned:    true, // handoff completion
		UnitStatusAvailable: true, // request denial or expiry
		UnitStatusLost:      true,
	},
	UnitStatusUnderRepair: {
		UnitStatusAvailable: true, // repair completion
		UnitStatusLost:      true,
	},
	UnitStatusLost: {},
}

// IsUnitStatus reports whether s is a recognized unit status.
func IsUnitStatus(s string) bool {
	return validUnitStatuses[s]
}

// CanTransition reports whether a unit may move from one status to another.
func CanTransition(from, to string) bool {
	return unitTransitions[from][to]
}

// unitCodePattern is the server-side authority on unit code format. The
// drafting client performs the same check, but the core never trusts it.
var unitCodePattern = regexp.MustCompile(`^[A-Z0-9]{1,6}$`)

// ValidateUnitCode checks a non-empty unit code against the format rule:
// at most six characters, uppercase letters and digits only.
func ValidateUnitCode(code string) error {
	if !unitCodePattern.MatchString(code) {
		return ErrInvalidCode
	}
	return nil
}

// Unit represents one physical, individually coded copy of a catalog item.
type Unit struct {
	UnitID string // UUID v7, generated on creation.
	ItemID string // Owning catalog item.
	Code   string // Short unique code; empty while pending staff input.
	Status string // One of the UnitStatus constants.
	Note   string // Optional free text.
	LoanID string // Current active loan, empty when none.

	// EverLoaned is derived from loan history on read; it is not stored.
	// It gates code mutability and reconciliation removal.
	EverLoaned bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
