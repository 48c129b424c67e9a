package types

import "time"

// Loan lifecycle states.
const (
	LoanStateActive   = "active"
	LoanStateReturned = "returned"
)

// Loan kinds. Internal loans are same-day consultation inside the
// building; external loans leave with the borrower.
const (
	LoanKindInternal = "internal"
	LoanKindExternal = "external"
)

// validLoanKinds is the set of recognized loan kind values.
var validLoanKinds = map[string]bool{
	LoanKindInternal: true,
	LoanKindExternal: true,
}

// IsLoanKind reports whether k is a recognized loan kind.
func IsLoanKind(k string) bool {
	return validLoanKinds[k]
}

// Loan represents one checkout of exactly one unit by exactly one
// borrower. Loans are never deleted; a return sets ReturnedAt and the
// state, nothing else mutates a loan.
type Loan struct {
	LoanID       string // UUID v7, generated on creation.
	UnitID       string
	BorrowerID   string // Identity supplied by the auth collaborator.
	BorrowerName string // Display-name snapshot taken at checkout.
	Kind         string // One of the LoanKind constants.
	CheckedOutAt time.Time
	DueAt        time.Time
	ReturnedAt   time.Time // Zero while active.
	State        string    // active or returned.
	Note         string

	// Display fields hydrated by joined reads, not stored on the loan row.
	ItemTitle string
	UnitCode  string
}

// Overdue reports whether the loan is active and was due strictly before
// asOf. Overdue is derived, never stored.
func (l *Loan) Overdue(asOf time.Time) bool {
	return l.State == LoanStateActive && l.DueAt.Before(asOf)
}
