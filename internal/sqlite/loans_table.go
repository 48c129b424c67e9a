// Loan table accessor. Loans are append-only audit records: creation
// happens inside the claim transaction, a return sets the return timestamp
// and state, and nothing is ever deleted.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/biblio/pkg/types"
)

// LoansTable provides access to loans rows.
type LoansTable struct {
	backend *Backend
}

const loanColumns = `l.loan_id, l.unit_id, l.borrower_id, l.borrower_name,
    l.kind, l.checked_out_at, l.due_at, l.returned_at, l.state, l.note`

// loanJoin enriches loan rows with the unit code and item title for
// display. Left joins: historical loans may outlive their unit.
const loanJoin = `FROM loans l
    LEFT JOIN units u ON u.unit_id = l.unit_id
    LEFT JOIN catalog_items i ON i.item_id = u.item_id`

// Get retrieves a loan by ID.
func (lt *LoansTable) Get(id string) (*types.Loan, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := lt.backend.handle()
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(
		`SELECT `+loanColumns+`, COALESCE(i.title, ''), COALESCE(u.code, '') `+loanJoin+`
         WHERE l.loan_id = ?`, id)
	loan, err := hydrateLoan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: loan %s", types.ErrNotFound, id)
		}
		return nil, storageError("getting loan", err)
	}
	return loan, nil
}

// ActiveByUnit returns the active loan currently holding a unit, or
// ErrNotFound when the unit is not out.
func (lt *LoansTable) ActiveByUnit(unitID string) (*types.Loan, error) {
	if unitID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := lt.backend.handle()
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(
		`SELECT `+loanColumns+`, COALESCE(i.title, ''), COALESCE(u.code, '') `+loanJoin+`
         WHERE l.unit_id = ? AND l.state = ?`, unitID, types.LoanStateActive)
	loan, err := hydrateLoan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active loan on unit %s", types.ErrNotFound, unitID)
		}
		return nil, storageError("getting active loan", err)
	}
	return loan, nil
}

// List returns loans, newest first. With activeOnly, returned loans are
// filtered out.
func (lt *LoansTable) List(activeOnly bool) ([]types.Loan, error) {
	db, err := lt.backend.handle()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + loanColumns + `, COALESCE(i.title, ''), COALESCE(u.code, '') ` + loanJoin
	var args []any
	if activeOnly {
		query += ` WHERE l.state = ?`
		args = append(args, types.LoanStateActive)
	}
	query += ` ORDER BY l.checked_out_at DESC, l.loan_id DESC`
	return lt.queryLoans(db, query, args...)
}

// ListOverdue returns all active loans whose due timestamp is strictly
// before asOf, most recently due first. Pure read; overdue is derived,
// never stored.
func (lt *LoansTable) ListOverdue(asOf time.Time) ([]types.Loan, error) {
	db, err := lt.backend.handle()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + loanColumns + `, COALESCE(i.title, ''), COALESCE(u.code, '') ` + loanJoin + `
        WHERE l.state = ? AND l.due_at < ?
        ORDER BY l.due_at DESC, l.loan_id DESC`
	return lt.queryLoans(db, query, types.LoanStateActive, fmtTime(asOf))
}

// Return closes an active loan and moves its unit to the target status:
// available for a plain return, under-repair or lost when the return
// carries an issue report. A second return fails with ErrLoanReturned and
// leaves the unit untouched.
func (lt *LoansTable) Return(loanID, targetStatus, note string, now time.Time) error {
	if loanID == "" {
		return types.ErrInvalidID
	}
	return lt.backend.withTx(func(tx *sql.Tx) error {
		var unitID, state string
		err := tx.QueryRow(
			`SELECT unit_id, state FROM loans WHERE loan_id = ?`, loanID,
		).Scan(&unitID, &state)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: loan %s", types.ErrNotFound, loanID)
		}
		if err != nil {
			return storageError("reading loan", err)
		}
		if state != types.LoanStateActive {
			return types.ErrLoanReturned
		}
		if err := closeLoan(tx, loanID, note, now); err != nil {
			return err
		}
		return transitionUnit(tx, unitID, types.UnitStatusLoaned, targetStatus, "", now)
	})
}

// Checkout opens a loan directly against an item, without a preceding
// request: the same lowest-ID claim and retry discipline as request
// approval. Returns the claimed unit ID.
func (lt *LoansTable) Checkout(itemID string, loan *types.Loan, retries int) (string, error) {
	if itemID == "" {
		return "", types.ErrInvalidID
	}
	var claimed string
	attempt := func() error {
		return lt.backend.withTx(func(tx *sql.Tx) error {
			now := time.Now().UTC()
			unitID, err := lowestAvailableUnit(tx, itemID)
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

// queryLoans runs a loan query and hydrates all rows.
func (lt *LoansTable) queryLoans(db *sql.DB, query string, args ...any) ([]types.Loan, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, storageError("querying loans", err)
	}
	defer rows.Close()

	loans := []types.Loan{}
	for rows.Next() {
		loan, err := hydrateLoan(rows.Scan)
		if err != nil {
			return nil, storageError("scanning loan", err)
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating loans", err)
	}
	return loans, nil
}

// insertLoan creates an active loan row inside an enclosing transaction
// and stamps the unit's back-reference via the caller's transition.
// The caller supplies borrower identity, kind, and due date; the store
// assigns the ID.
func insertLoan(tx *sql.Tx, loan *types.Loan, now time.Time) error {
	loan.LoanID = generateID()
	loan.State = types.LoanStateActive
	loan.CheckedOutAt = now
	_, err := tx.Exec(
		`INSERT INTO loans (loan_id, unit_id, borrower_id, borrower_name, kind,
         checked_out_at, due_at, returned_at, state, note)
         VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		loan.LoanID, loan.UnitID, loan.BorrowerID, loan.BorrowerName,
		loan.Kind, fmtTime(loan.CheckedOutAt), fmtTime(loan.DueAt),
		loan.State, loan.Note,
	)
	if err != nil {
		return storageError("inserting loan", err)
	}
	return nil
}

// closeLoan marks a loan returned, appending the note when one is given.
func closeLoan(tx *sql.Tx, loanID, note string, now time.Time) error {
	var err error
	if note == "" {
		_, err = tx.Exec(
			`UPDATE loans SET state = ?, returned_at = ? WHERE loan_id = ?`,
			types.LoanStateReturned, fmtTime(now), loanID,
		)
	} else {
		_, err = tx.Exec(
			`UPDATE loans SET state = ?, returned_at = ?,
             note = CASE WHEN note = '' THEN ? ELSE note || '; ' || ? END
             WHERE loan_id = ?`,
			types.LoanStateReturned, fmtTime(now), note, note, loanID,
		)
	}
	if err != nil {
		return storageError("closing loan", err)
	}
	return nil
}

// hydrateLoan scans one joined loans row.
func hydrateLoan(scan func(...any) error) (*types.Loan, error) {
	var loan types.Loan
	var checkedOut, due, returned string
	err := scan(
		&loan.LoanID, &loan.UnitID, &loan.BorrowerID, &loan.BorrowerName,
		&loan.Kind, &checkedOut, &due, &returned, &loan.State, &loan.Note,
		&loan.ItemTitle, &loan.UnitCode,
	)
	if err != nil {
		return nil, err
	}
	if loan.CheckedOutAt, err = parseTime(checkedOut); err != nil {
		return nil, fmt.Errorf("parsing checked_out_at: %w", err)
	}
	if loan.DueAt, err = parseTime(due); err != nil {
		return nil, fmt.Errorf("parsing due_at: %w", err)
	}
	if loan.ReturnedAt, err = parseTime(returned); err != nil {
		return nil, fmt.Errorf("parsing returned_at: %w", err)
	}
	return &loan, nil
}
