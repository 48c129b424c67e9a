// Package notify derives the staff alert feed from live circulation
// state. Alerts are never stored: each derivation pass reads the pending
// requests and overdue loans fresh, so the feed can never drift from the
// ledger.
package notify

import (
	"fmt"
	"time"

	"github.com/openshelf/biblio/internal/sqlite"
	"github.com/openshelf/biblio/pkg/types"
)

// Alert kinds.
const (
	KindRequest = "request"
	KindOverdue = "overdue"
)

// Alert is one entry in the derived feed. Seq numbers restart from 1 on
// every derivation pass; they order the feed for display and carry no
// identity across passes.
type Alert struct {
	Seq     int
	Kind    string
	Message string
	At      time.Time // The event the alert points at.

	// Back-references into the ledger for acting on the alert.
	RequestID string
	LoanID    string
}

// Deriver builds the alert feed.
type Deriver struct {
	store *sqlite.Backend
}

// NewDeriver returns a deriver over an attached store.
func NewDeriver(store *sqlite.Backend) *Deriver {
	return &Deriver{store: store}
}

// Derive builds the feed as seen by the viewer at the given instant:
// pending requests from the recency window first, then overdue loans, each
// group newest first. Supervisors see the overdue group only; request
// decisions are not theirs to make.
func (d *Deriver) Derive(viewer types.Identity, now time.Time) ([]Alert, error) {
	if err := viewer.Validate(); err != nil {
		return nil, err
	}
	if !viewer.CanViewAlerts() {
		return nil, fmt.Errorf("%w: role %s cannot view alerts", types.ErrForbidden, viewer.Role)
	}

	alerts := []Alert{}
	seq := 1

	if viewer.CanManageCatalog() {
		window := time.Duration(d.store.Config().Notifications.GetRequestWindowHours()) * time.Hour
		requests, err := d.store.Requests().ListPendingSince(now.Add(-window))
		if err != nil {
			return nil, err
		}
		for _, req := range requests {
			alerts = append(alerts, Alert{
				Seq:  seq,
				Kind: KindRequest,
				Message: fmt.Sprintf("%s requested %q (%s)",
					req.RequesterName, req.ItemTitle, TimeAgo(now, req.CreatedAt)),
				At:        req.CreatedAt,
				RequestID: req.RequestID,
			})
			seq++
		}
	}

	overdue, err := d.store.Loans().ListOverdue(now)
	if err != nil {
		return nil, err
	}
	for _, loan := range overdue {
		alerts = append(alerts, Alert{
			Seq:  seq,
			Kind: KindOverdue,
			Message: fmt.Sprintf("%q held by %s is overdue (due %s)",
				loan.ItemTitle, loan.BorrowerName, TimeAgo(now, loan.DueAt)),
			At:     loan.DueAt,
			LoanID: loan.LoanID,
		})
		seq++
	}

	return alerts, nil
}

// TimeAgo renders the age of an instant in the feed's coarse vocabulary.
// Each step is a floor division: 119 minutes is still "1 hours ago".
func TimeAgo(now, t time.Time) string {
	delta := now.Sub(t)
	switch {
	case delta < time.Minute:
		return "now"
	case delta < time.Hour:
		return fmt.Sprintf("%d min ago", int(delta/time.Minute))
	case delta < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(delta/time.Hour))
	default:
		return fmt.Sprintf("%d days ago", int(delta/(24*time.Hour)))
	}
}
