// Request table accessor. Approval and handoff run the unit claim: pick
// the lowest-ID available unit, flip it with the compare-and-swap
// transition, and write the loan and the request decision in the same
// transaction. A lost claim re-selects another unit, bounded by the
// caller's retry budget.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/biblio/pkg/types"
)

// RequestsTable provides access to requests rows.
type RequestsTable struct {
	backend *Backend
}

const requestColumns = `r.request_id, r.requester_id, r.requester_name,
    r.item_id, r.unit_id, r.kind, r.state, r.created_at, r.decided_at`

const requestJoin = `FROM requests r
    LEFT JOIN catalog_items i ON i.item_id = r.item_id`

// Insert creates a pending request. The caller has already validated the
// loan-mode policy and availability.
func (rt *RequestsTable) Insert(req *types.Request) (string, error) {
	db, err := rt.backend.handle()
	if err != nil {
		return "", err
	}
	req.RequestID = generateID()
	req.State = types.RequestStatePending
	req.CreatedAt = time.Now().UTC()
	_, err = db.Exec(
		`INSERT INTO requests (request_id, requester_id, requester_name,
         item_id, unit_id, kind, state, created_at, decided_at)
         VALUES (?, ?, ?, ?, '', ?, ?, ?, '')`,
		req.RequestID, req.RequesterID, req.RequesterName, req.ItemID,
		req.Kind, req.State, fmtTime(req.CreatedAt),
	)
	if err != nil {
		return "", storageError("inserting request", err)
	}
	return req.RequestID, nil
}

// Get retrieves a request by ID.
func (rt *RequestsTable) Get(id string) (*types.Request, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := rt.backend.handle()
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(
		`SELECT `+requestColumns+`, COALESCE(i.title, '') `+requestJoin+`
         WHERE r.request_id = ?`, id)
	req, err := hydrateRequest(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %s", types.ErrNotFound, id)
		}
		return nil, storageError("getting request", err)
	}
	return req, nil
}

// List returns requests, newest first, optionally only pending ones.
func (rt *RequestsTable) List(pendingOnly bool) ([]types.Request, error) {
	db, err := rt.backend.handle()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + requestColumns + `, COALESCE(i.title, '') ` + requestJoin
	var args []any
	if pendingOnly {
		query += ` WHERE r.state = ?`
		args = append(args, types.RequestStatePending)
	}
	query += ` ORDER BY r.created_at DESC, r.request_id DESC`
	return rt.queryRequests(db, query, args...)
}

// ListPendingSince returns pending requests created at or after the given
// instant, newest first. Feeds the notification deriver's recency window.
func (rt *RequestsTable) ListPendingSince(since time.Time) ([]types.Request, error) {
	db, err := rt.backend.handle()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + requestColumns + `, COALESCE(i.title, '') ` + requestJoin + `
        WHERE r.state = ? AND r.created_at >= ?
        ORDER BY r.created_at DESC, r.request_id DESC`
	return rt.queryRequests(db, query, types.RequestStatePending, fmtTime(since))
}

// Approve decides a pending request by claiming an available unit of the
// requested item and opening the supplied loan on it, all in one
// transaction per claim attempt. Selection is lowest unit ID first for
// determinism. A claim lost to a concurrent transition re-selects, at most
// retries times, before reporting ErrNoUnitsAvailable. Returns the claimed
// unit ID.
func (rt *RequestsTable) Approve(requestID string, loan *types.Loan, retries int) (string, error) {
	if requestID == "" {
		return "", types.ErrInvalidID
	}
	var claimed string
	attempt := func() error {
		return rt.backend.withTx(func(tx *sql.Tx) error {
			req, err := pendingRequest(tx, requestID)
			if err != nil {
				return err
			}
			now := time.Now().UTC()

			unitID, err := lowestAvailableUnit(tx, req.ItemID)
			if err != nil {
				return err
			}
			loan.UnitID = unitID
			if err := insertLoan(tx, loan, now); err != nil {
				return err
			}
			if err := transitionUnit(tx, unitID,
				types.UnitStatusAvailable, types.UnitStatusLoaned, loan.LoanID, now); err != nil {
				return err
			}
			if err := decideRequest(tx, requestID, types.RequestStateApproved, unitID, now); err != nil {
				return err
			}
			claimed = unitID
			return nil
		})
	}

	var err error
	for i := 0; i <= retries; i++ {
		err = attempt()
		if err == nil {
			return claimed, nil
		}
		// Only a lost claim warrants re-selecting another unit.
		if !errors.Is(err, types.ErrInvalidTransition) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: claim retries exhausted", types.ErrNoUnitsAvailable)
}

// Reserve claims an available unit into reserved for a pending request,
// pending actual handoff. The request stays pending with the unit
// recorded. Same selection and retry discipline as Approve.
func (rt *RequestsTable) Reserve(requestID string, retries int) (string, error) {
	if requestID == "" {
		return "", types.ErrInvalidID
	}
	var claimed string
	attempt := func() error {
		return rt.backend.withTx(func(tx *sql.Tx) error {
			req, err := pendingRequest(tx, requestID)
			if err != nil {
				return err
			}
			if req.UnitID != "" {
				return fmt.Errorf("%w: request already holds a reservation", types.ErrState)
			}
			now := time.Now().UTC()

			unitID, err := lowestAvailableUnit(tx, req.ItemID)
			if err != nil {
				return err
			}
			if err := transitionUnit(tx, unitID,
				types.UnitStatusAvailable, types.UnitStatusReserved, "", now); err != nil {
				return err
			}
			if _, err := tx.Exec(
				`UPDATE requests SET unit_id = ? WHERE request_id = ?`, unitID, requestID,
			); err != nil {
				return storageError("recording reservation", err)
			}
			claimed = unitID
			return nil
		})
	}

	var err error
	for i := 0; i <= retries; i++ {
		err = attempt()
		if err == nil {
			return claimed, nil
		}
		if !errors.Is(err, types.ErrInvalidTransition) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: claim retries exhausted", types.ErrNoUnitsAvailable)
}

// Handoff completes a reservation: the reserved unit goes out on the
// supplied loan and the request is approved.
func (rt *RequestsTable) Handoff(requestID string, loan *types.Loan) (string, error) {
	if requestID == "" {
		return "", types.ErrInvalidID
	}
	var unitID string
	err := rt.backend.withTx(func(tx *sql.Tx) error {
		req, err := pendingRequest(tx, requestID)
		if err != nil {
			return err
		}
		if req.UnitID == "" {
			return types.ErrNotReserved
		}
		now := time.Now().UTC()

		loan.UnitID = req.UnitID
		if err := insertLoan(tx, loan, now); err != nil {
			return err
		}
		if err := transitionUnit(tx, req.UnitID,
			types.UnitStatusReserved, types.UnitStatusLoaned, loan.LoanID, now); err != nil {
			return err
		}
		if err := decideRequest(tx, requestID, types.RequestStateApproved, req.UnitID, now); err != nil {
			return err
		}
		unitID = req.UnitID
		return nil
	})
	if err != nil {
		return "", err
	}
	return unitID, nil
}

// Deny decides a pending request negatively, releasing any reserved unit
// back to circulation.
func (rt *RequestsTable) Deny(requestID string) error {
	if requestID == "" {
		return types.ErrInvalidID
	}
	return rt.backend.withTx(func(tx *sql.Tx) error {
		req, err := pendingRequest(tx, requestID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := releaseReservation(tx, req, now); err != nil {
			return err
		}
		return decideRequest(tx, requestID, types.RequestStateDenied, req.UnitID, now)
	})
}

// ExpireOlderThan moves pending requests created before the cutoff to
// expired, releasing their reservations. Returns how many were expired.
func (rt *RequestsTable) ExpireOlderThan(cutoff time.Time) (int, error) {
	var expired int
	err := rt.backend.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(
			`SELECT `+requestColumns+`, COALESCE(i.title, '') `+requestJoin+`
             WHERE r.state = ? AND r.created_at < ?`,
			types.RequestStatePending, fmtTime(cutoff),
		)
		if err != nil {
			return storageError("selecting stale requests", err)
		}
		var stale []types.Request
		for rows.Next() {
			req, err := hydrateRequest(rows.Scan)
			if err != nil {
				rows.Close()
				return storageError("scanning stale request", err)
			}
			stale = append(stale, *req)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return storageError("iterating stale requests", err)
		}

		now := time.Now().UTC()
		for i := range stale {
			if err := releaseReservation(tx, &stale[i], now); err != nil {
				return err
			}
			if err := decideRequest(tx, stale[i].RequestID,
				types.RequestStateExpired, stale[i].UnitID, now); err != nil {
				return err
			}
		}
		expired = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// pendingRequest loads a request inside a transaction and enforces that it
// is still pending: terminal requests are never mutated.
func pendingRequest(tx *sql.Tx, requestID string) (*types.Request, error) {
	var req types.Request
	var createdAt, decidedAt string
	err := tx.QueryRow(
		`SELECT request_id, requester_id, requester_name, item_id, unit_id,
         kind, state, created_at, decided_at FROM requests WHERE request_id = ?`,
		requestID,
	).Scan(
		&req.RequestID, &req.RequesterID, &req.RequesterName, &req.ItemID,
		&req.UnitID, &req.Kind, &req.State, &createdAt, &decidedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: request %s", types.ErrNotFound, requestID)
	}
	if err != nil {
		return nil, storageError("reading request", err)
	}
	if req.State != types.RequestStatePending {
		return nil, fmt.Errorf("%w: request is %s", types.ErrRequestDecided, req.State)
	}
	if req.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, storageError("parsing request created_at", err)
	}
	return &req, nil
}

// lowestAvailableUnit selects the claim candidate: the available unit of
// the item with the lexicographically lowest ID, which for UUID v7 keys
// is the oldest.
func lowestAvailableUnit(tx *sql.Tx, itemID string) (string, error) {
	var unitID string
	err := tx.QueryRow(
		`SELECT unit_id FROM units WHERE item_id = ? AND status = ?
         ORDER BY unit_id ASC LIMIT 1`,
		itemID, types.UnitStatusAvailable,
	).Scan(&unitID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrNoUnitsAvailable
	}
	if err != nil {
		return "", storageError("selecting available unit", err)
	}
	return unitID, nil
}

// decideRequest writes a request's terminal state.
func decideRequest(tx *sql.Tx, requestID, state, unitID string, now time.Time) error {
	_, err := tx.Exec(
		`UPDATE requests SET state = ?, unit_id = ?, decided_at = ? WHERE request_id = ?`,
		state, unitID, fmtTime(now), requestID,
	)
	if err != nil {
		return storageError("deciding request", err)
	}
	return nil
}

// releaseReservation returns a request's reserved unit to available, if it
// holds one. A unit reported lost while reserved stays lost.
func releaseReservation(tx *sql.Tx, req *types.Request, now time.Time) error {
	if req.UnitID == "" {
		return nil
	}
	err := transitionUnit(tx, req.UnitID,
		types.UnitStatusReserved, types.UnitStatusAvailable, "", now)
	if err != nil && !errors.Is(err, types.ErrInvalidTransition) {
		return err
	}
	return nil
}

// queryRequests runs a request query and hydrates all rows.
func (rt *RequestsTable) queryRequests(db *sql.DB, query string, args ...any) ([]types.Request, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, storageError("querying requests", err)
	}
	defer rows.Close()

	requests := []types.Request{}
	for rows.Next() {
		req, err := hydrateRequest(rows.Scan)
		if err != nil {
			return nil, storageError("scanning request", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating requests", err)
	}
	return requests, nil
}

// hydrateRequest scans one joined requests row.
func hydrateRequest(scan func(...any) error) (*types.Request, error) {
	var req types.Request
	var createdAt, decidedAt string
	err := scan(
		&req.RequestID, &req.RequesterID, &req.RequesterName, &req.ItemID,
		&req.UnitID, &req.Kind, &req.State, &createdAt, &decidedAt,
		&req.ItemTitle,
	)
	if err != nil {
		return nil, err
	}
	if req.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if req.DecidedAt, err = parseTime(decidedAt); err != nil {
		return nil, fmt.Errorf("parsing decided_at: %w", err)
	}
	return &req, nil
}
