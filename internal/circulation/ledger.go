// Package circulation implements the loan ledger: request submission and
// decision, direct checkouts, returns, issue reports, and the overdue
// report. Every unit claim goes through the store's compare-and-swap
// transition, so two concurrent decisions can never hand out the same
// physical copy.
package circulation

import (
	"fmt"
	"time"

	"github.com/openshelf/biblio/internal/sqlite"
	"github.com/openshelf/biblio/pkg/types"
)

// Issue report kinds accepted by returns and direct reports.
const (
	IssueDamaged = "damaged"
	IssueLost    = "lost"
)

// Ledger is the circulation surface. Borrower identity arrives from the
// auth collaborator on every call; the ledger snapshots the display name
// into the loan or request record at write time.
type Ledger struct {
	store *sqlite.Backend
}

// NewLedger returns a circulation ledger over an attached store.
func NewLedger(store *sqlite.Backend) *Ledger {
	return &Ledger{store: store}
}

// SubmitRequest files a borrower's ask for an item. The item's loan mode
// must permit the requested kind, and at least one unit must be available
// at submission time; availability is re-checked at decision time, so this
// is a courtesy rejection, not a hold.
func (l *Ledger) SubmitRequest(requester types.Identity, itemID, kind string) (*types.Request, error) {
	if err := requester.Validate(); err != nil {
		return nil, err
	}
	if !types.IsLoanKind(kind) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidLoanKind, kind)
	}
	item, err := l.store.Items().Get(itemID)
	if err != nil {
		return nil, err
	}
	if !types.LoanModeAllows(item.LoanMode, kind) {
		return nil, fmt.Errorf("%w: item allows %s loans only",
			types.ErrLoanModeForbids, item.LoanMode)
	}
	available, err := l.store.Units().CountAvailable(itemID)
	if err != nil {
		return nil, err
	}
	if available == 0 {
		return nil, fmt.Errorf("%w: no copies of %q available", types.ErrNoUnitsAvailable, item.Title)
	}

	req := &types.Request{
		RequesterID:   requester.UserID,
		RequesterName: requester.Name,
		ItemID:        itemID,
		Kind:          kind,
	}
	if _, err := l.store.Requests().Insert(req); err != nil {
		return nil, err
	}
	req.ItemTitle = item.Title
	return req, nil
}

// ApproveRequest decides a pending request: a unit is claimed and goes out
// on loan to the requester immediately. Returns the opened loan.
func (l *Ledger) ApproveRequest(actor types.Identity, requestID string) (*types.Loan, error) {
	if err := l.gate(actor); err != nil {
		return nil, err
	}
	req, err := l.store.Requests().Get(requestID)
	if err != nil {
		return nil, err
	}
	loan := l.loanFor(req.RequesterID, req.RequesterName, req.Kind)
	if _, err := l.store.Requests().Approve(requestID, loan, l.retries()); err != nil {
		return nil, err
	}
	return l.store.Loans().Get(loan.LoanID)
}

// ReserveRequest claims a unit for a pending request without opening the
// loan, holding the copy until the borrower collects it. Returns the
// reserved unit ID.
func (l *Ledger) ReserveRequest(actor types.Identity, requestID string) (string, error) {
	if err := l.gate(actor); err != nil {
		return "", err
	}
	return l.store.Requests().Reserve(requestID, l.retries())
}

// CompleteHandoff opens the loan on a previously reserved unit. The due
// date is computed at handoff, not reservation.
func (l *Ledger) CompleteHandoff(actor types.Identity, requestID string) (*types.Loan, error) {
	if err := l.gate(actor); err != nil {
		return nil, err
	}
	req, err := l.store.Requests().Get(requestID)
	if err != nil {
		return nil, err
	}
	loan := l.loanFor(req.RequesterID, req.RequesterName, req.Kind)
	if _, err := l.store.Requests().Handoff(requestID, loan); err != nil {
		return nil, err
	}
	return l.store.Loans().Get(loan.LoanID)
}

// DenyRequest decides a pending request negatively, releasing any held
// reservation.
func (l *Ledger) DenyRequest(actor types.Identity, requestID string) error {
	if err := l.gate(actor); err != nil {
		return err
	}
	return l.store.Requests().Deny(requestID)
}

// ExpirePending sweeps pending requests older than the configured window
// into expired, releasing their reservations. Returns how many expired.
func (l *Ledger) ExpirePending(now time.Time) (int, error) {
	window := time.Duration(l.store.Config().Notifications.GetRequestWindowHours()) * time.Hour
	return l.store.Requests().ExpireOlderThan(now.Add(-window))
}

// Checkout opens a loan directly, without a preceding request: the walk-in
// path. The loan-mode policy applies exactly as on requests.
func (l *Ledger) Checkout(actor types.Identity, itemID string, borrower types.Identity, kind string) (*types.Loan, error) {
	if err := l.gate(actor); err != nil {
		return nil, err
	}
	if err := borrower.Validate(); err != nil {
		return nil, err
	}
	if !types.IsLoanKind(kind) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidLoanKind, kind)
	}
	item, err := l.store.Items().Get(itemID)
	if err != nil {
		return nil, err
	}
	if !types.LoanModeAllows(item.LoanMode, kind) {
		return nil, fmt.Errorf("%w: item allows %s loans only",
			types.ErrLoanModeForbids, item.LoanMode)
	}
	loan := l.loanFor(borrower.UserID, borrower.Name, kind)
	if _, err := l.store.Loans().Checkout(itemID, loan, l.retries()); err != nil {
		return nil, err
	}
	return l.store.Loans().Get(loan.LoanID)
}

// ReturnLoan closes an active loan. An empty issue returns the unit to
// circulation; "damaged" routes it to repair and "lost" retires it, the
// note landing on the loan record either way.
func (l *Ledger) ReturnLoan(actor types.Identity, loanID, issue, note string) error {
	if err := l.gate(actor); err != nil {
		return err
	}
	target, err := issueTarget(issue, types.UnitStatusAvailable)
	if err != nil {
		return err
	}
	return l.store.Loans().Return(loanID, target, note, time.Now().UTC())
}

// ReportUnitIssue flags a unit as damaged or lost outside of a return.
// A unit currently out on loan has its loan force-closed first.
func (l *Ledger) ReportUnitIssue(actor types.Identity, unitID, issue, note string) error {
	if err := l.gate(actor); err != nil {
		return err
	}
	target, err := issueTarget(issue, "")
	if err != nil {
		return err
	}
	if target == "" {
		return fmt.Errorf("%w: issue kind must be %q or %q",
			types.ErrValidation, IssueDamaged, IssueLost)
	}
	return l.store.Units().ReportIssue(unitID, target, note, time.Now().UTC())
}

// CompleteRepair returns a repaired unit to circulation.
func (l *Ledger) CompleteRepair(actor types.Identity, unitID string) error {
	if err := l.gate(actor); err != nil {
		return err
	}
	return l.store.Units().CompleteRepair(unitID, time.Now().UTC())
}

// GetUnitLoan returns the active loan holding a unit.
func (l *Ledger) GetUnitLoan(unitID string) (*types.Loan, error) {
	return l.store.Loans().ActiveByUnit(unitID)
}

// GetLoan returns one loan, active or historical.
func (l *Ledger) GetLoan(loanID string) (*types.Loan, error) {
	return l.store.Loans().Get(loanID)
}

// ListLoans returns loans newest first, optionally only active ones.
func (l *Ledger) ListLoans(activeOnly bool) ([]types.Loan, error) {
	return l.store.Loans().List(activeOnly)
}

// ListOverdue returns active loans past due as of the given instant.
func (l *Ledger) ListOverdue(asOf time.Time) ([]types.Loan, error) {
	return l.store.Loans().ListOverdue(asOf)
}

// GetRequest returns one request.
func (l *Ledger) GetRequest(requestID string) (*types.Request, error) {
	return l.store.Requests().Get(requestID)
}

// ListRequests returns requests newest first, optionally only pending
// ones.
func (l *Ledger) ListRequests(pendingOnly bool) ([]types.Request, error) {
	return l.store.Requests().List(pendingOnly)
}

// gate enforces the admin-only rule on circulation decisions.
func (l *Ledger) gate(actor types.Identity) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.CanManageCatalog() {
		return fmt.Errorf("%w: role %s cannot decide circulation", types.ErrForbidden, actor.Role)
	}
	return nil
}

// retries returns the configured claim retry bound.
func (l *Ledger) retries() int {
	return l.store.Config().Circulation.GetClaimRetries()
}

// loanFor builds a loan record with the policy due date for the kind.
func (l *Ledger) loanFor(borrowerID, borrowerName, kind string) *types.Loan {
	now := time.Now().UTC()
	policy := l.store.Config().Circulation
	var due time.Time
	if kind == types.LoanKindInternal {
		due = now.Add(time.Duration(policy.GetInternalLoanHours()) * time.Hour)
	} else {
		due = now.Add(time.Duration(policy.GetExternalLoanDays()) * 24 * time.Hour)
	}
	return &types.Loan{
		BorrowerID:   borrowerID,
		BorrowerName: borrowerName,
		Kind:         kind,
		DueAt:        due,
	}
}

// issueTarget maps an issue report kind to the unit's target status.
// fallback is returned for an empty issue; an empty fallback makes the
// issue mandatory.
func issueTarget(issue, fallback string) (string, error) {
	switch issue {
	case "":
		return fallback, nil
	case IssueDamaged:
		return types.UnitStatusUnderRepair, nil
	case IssueLost:
		return types.UnitStatusLost, nil
	default:
		return "", fmt.Errorf("%w: unknown issue kind %q", types.ErrValidation, issue)
	}
}
