package types

import "time"

// Request lifecycle states. Approved, denied, and expired are terminal;
// a request is never mutated after reaching one of them.
const (
	RequestStatePending  = "pending"
	RequestStateApproved = "approved"
	RequestStateDenied   = "denied"
	RequestStateExpired  = "expired"
)

// RequestStateTerminal reports whether s is a terminal request state.
func RequestStateTerminal(s string) bool {
	return s == RequestStateApproved || s == RequestStateDenied || s == RequestStateExpired
}

// Request represents a borrower's pending ask for an item, preceding loan
// approval.
type Request struct {
	RequestID     string // UUID v7, generated on creation.
	RequesterID   string // Identity supplied by the auth collaborator.
	RequesterName string // Display-name snapshot taken at submission.
	ItemID        string
	UnitID        string // Reserved unit, empty until a reservation is made.
	Kind          string // Requested loan kind.
	State         string
	CreatedAt     time.Time
	DecidedAt     time.Time // Zero while pending.

	// Display field hydrated by joined reads.
	ItemTitle string
}
