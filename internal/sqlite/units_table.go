// Unit registry table accessor. Owns the per-item unit set, the global
// unique-code rule, reconciliation against the declared count, and the
// compare-and-swap status transition every circulation event goes through.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/biblio/pkg/types"
)

// UnitsTable provides access to units rows.
type UnitsTable struct {
	backend *Backend
}

// everLoanedExpr derives loan history for a unit; history is never stored
// on the unit row itself.
const everLoanedExpr = `EXISTS(SELECT 1 FROM loans l WHERE l.unit_id = u.unit_id)`

const unitColumns = `u.unit_id, u.item_id, u.code, u.status, u.note,
    u.loan_id, u.created_at, u.updated_at, ` + everLoanedExpr

// Get retrieves a unit by ID.
func (ut *UnitsTable) Get(id string) (*types.Unit, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := ut.backend.handle()
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT `+unitColumns+` FROM units u WHERE u.unit_id = ?`, id)
	unit, err := hydrateUnit(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: unit %s", types.ErrNotFound, id)
		}
		return nil, storageError("getting unit", err)
	}
	return unit, nil
}

// ListByItem returns an item's units ordered by unit ID ascending, which
// is creation order.
func (ut *UnitsTable) ListByItem(itemID string) ([]types.Unit, error) {
	if itemID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := ut.backend.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT `+unitColumns+` FROM units u WHERE u.item_id = ? ORDER BY u.unit_id ASC`,
		itemID,
	)
	if err != nil {
		return nil, storageError("listing units", err)
	}
	defer rows.Close()

	units := []types.Unit{}
	for rows.Next() {
		unit, err := hydrateUnit(rows.Scan)
		if err != nil {
			return nil, storageError("scanning unit", err)
		}
		units = append(units, *unit)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating units", err)
	}
	return units, nil
}

// CountAvailable returns how many of an item's units are available.
func (ut *UnitsTable) CountAvailable(itemID string) (int, error) {
	db, err := ut.backend.handle()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRow(
		`SELECT COUNT(*) FROM units WHERE item_id = ? AND status = ?`,
		itemID, types.UnitStatusAvailable,
	).Scan(&n)
	if err != nil {
		return 0, storageError("counting available units", err)
	}
	return n, nil
}

// SetCode assigns a unit's unique code. The code is validated against the
// format rule, checked for registry-wide uniqueness, and rejected outright
// when the unit has loan history and the code would change: after the
// first checkout the code is identifying data.
func (ut *UnitsTable) SetCode(unitID, code string) error {
	if unitID == "" {
		return types.ErrInvalidID
	}
	if code != "" {
		if err := types.ValidateUnitCode(code); err != nil {
			return err
		}
	}
	return ut.backend.withTx(func(tx *sql.Tx) error {
		var current string
		var everLoaned bool
		err := tx.QueryRow(
			`SELECT u.code, `+everLoanedExpr+` FROM units u WHERE u.unit_id = ?`, unitID,
		).Scan(&current, &everLoaned)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unit %s", types.ErrNotFound, unitID)
		}
		if err != nil {
			return storageError("reading unit code", err)
		}
		if code == current {
			return nil
		}
		if everLoaned {
			return types.ErrCodeLocked
		}
		if code != "" {
			var taken int
			err = tx.QueryRow(
				`SELECT 1 FROM units WHERE code = ? AND unit_id <> ?`, code, unitID,
			).Scan(&taken)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return storageError("checking code uniqueness", err)
			}
			if taken == 1 {
				return types.ErrCodeTaken
			}
		}
		_, err = tx.Exec(
			`UPDATE units SET code = ?, updated_at = ? WHERE unit_id = ?`,
			code, fmtTime(time.Now().UTC()), unitID,
		)
		if err != nil {
			return storageError("updating unit code", err)
		}
		return nil
	})
}

// SetNote replaces a unit's free-text note.
func (ut *UnitsTable) SetNote(unitID, note string) error {
	if unitID == "" {
		return types.ErrInvalidID
	}
	db, err := ut.backend.handle()
	if err != nil {
		return err
	}
	res, err := db.Exec(
		`UPDATE units SET note = ?, updated_at = ? WHERE unit_id = ?`,
		note, fmtTime(time.Now().UTC()), unitID,
	)
	if err != nil {
		return storageError("updating unit note", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: unit %s", types.ErrNotFound, unitID)
	}
	return nil
}

// ReportIssue opens a damage or loss report against a unit. Any active
// loan on the unit is force-closed as returned with a note, since a unit
// cannot be simultaneously on loan and under repair or lost. Lost is
// terminal; reporting against a lost unit fails.
func (ut *UnitsTable) ReportIssue(unitID, target, note string, now time.Time) error {
	if unitID == "" {
		return types.ErrInvalidID
	}
	if target != types.UnitStatusUnderRepair && target != types.UnitStatusLost {
		return fmt.Errorf("%w: issue must mark the unit under-repair or lost", types.ErrValidation)
	}
	return ut.backend.withTx(func(tx *sql.Tx) error {
		var status, loanID string
		err := tx.QueryRow(
			`SELECT status, loan_id FROM units WHERE unit_id = ?`, unitID,
		).Scan(&status, &loanID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unit %s", types.ErrNotFound, unitID)
		}
		if err != nil {
			return storageError("reading unit status", err)
		}
		if !types.CanTransition(status, target) {
			return fmt.Errorf("%w: %s to %s", types.ErrInvalidTransition, status, target)
		}

		if loanID != "" {
			if err := closeLoan(tx, loanID, note, now); err != nil {
				return err
			}
		}
		if err := transitionUnit(tx, unitID, status, target, "", now); err != nil {
			return err
		}
		if note != "" {
			if _, err := tx.Exec(`UPDATE units SET note = ? WHERE unit_id = ?`, note, unitID); err != nil {
				return storageError("updating unit note", err)
			}
		}
		return nil
	})
}

// CompleteRepair returns a unit from under-repair to circulation.
func (ut *UnitsTable) CompleteRepair(unitID string, now time.Time) error {
	if unitID == "" {
		return types.ErrInvalidID
	}
	return ut.backend.withTx(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM units WHERE unit_id = ?`, unitID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unit %s", types.ErrNotFound, unitID)
		}
		if err != nil {
			return storageError("checking unit existence", err)
		}
		return transitionUnit(tx, unitID, types.UnitStatusUnderRepair, types.UnitStatusAvailable, "", now)
	})
}

// insertUnit creates one available, uncoded-unless-supplied unit inside an
// enclosing transaction. A non-empty duplicate code reports ErrCodeTaken.
func insertUnit(tx *sql.Tx, itemID, code string, now time.Time) error {
	if code != "" {
		var taken int
		err := tx.QueryRow(`SELECT 1 FROM units WHERE code = ?`, code).Scan(&taken)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return storageError("checking code uniqueness", err)
		}
		if taken == 1 {
			return fmt.Errorf("%w: %q", types.ErrCodeTaken, code)
		}
	}
	_, err := tx.Exec(
		`INSERT INTO units (unit_id, item_id, code, status, note, loan_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, '', '', ?, ?)`,
		generateID(), itemID, code, types.UnitStatusAvailable,
		fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return storageError("inserting unit", err)
	}
	return nil
}

// reconcileUnits adjusts an item's unit set to the new declared count.
// Growth creates available units with empty codes pending staff input.
// Shrinking removes available units that have never been loaned, newest
// first; when too few such units exist the whole edit fails with a
// conflict rather than silently destroying history.
func reconcileUnits(tx *sql.Tx, itemID string, current, target int, now time.Time) error {
	switch {
	case target > current:
		for i := 0; i < target-current; i++ {
			if err := insertUnit(tx, itemID, "", now); err != nil {
				return err
			}
		}
		return nil

	case target < current:
		excess := current - target
		rows, err := tx.Query(
			`SELECT u.unit_id FROM units u
             WHERE u.item_id = ? AND u.status = ? AND NOT `+everLoanedExpr+`
             ORDER BY u.unit_id DESC LIMIT ?`,
			itemID, types.UnitStatusAvailable, excess,
		)
		if err != nil {
			return storageError("selecting removable units", err)
		}
		var removable []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return storageError("scanning removable unit", err)
			}
			removable = append(removable, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return storageError("iterating removable units", err)
		}

		if len(removable) < excess {
			return fmt.Errorf("%w: need to remove %d, only %d removable",
				types.ErrShrinkBlocked, excess, len(removable))
		}
		for _, id := range removable {
			if _, err := tx.Exec(`DELETE FROM units WHERE unit_id = ?`, id); err != nil {
				return storageError("deleting unit", err)
			}
		}
		return nil

	default:
		return nil
	}
}

// transitionUnit is the single mutual-exclusion point of the system: an
// update matching on both unit ID and expected current status, so two
// racing transitions can never both claim the same unit. A lost race
// reports ErrInvalidTransition; callers that can re-select (the claim
// loop) treat it as a retry signal.
func transitionUnit(tx *sql.Tx, unitID, from, to, loanID string, now time.Time) error {
	if !types.CanTransition(from, to) {
		return fmt.Errorf("%w: %s to %s", types.ErrInvalidTransition, from, to)
	}
	res, err := tx.Exec(
		`UPDATE units SET status = ?, loan_id = ?, updated_at = ?
         WHERE unit_id = ? AND status = ?`,
		to, loanID, fmtTime(now), unitID, from,
	)
	if err != nil {
		return storageError("transitioning unit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("reading rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: unit %s no longer %s", types.ErrInvalidTransition, unitID, from)
	}
	return nil
}

// hydrateUnit scans one units row (with the derived loan-history flag).
func hydrateUnit(scan func(...any) error) (*types.Unit, error) {
	var unit types.Unit
	var createdAt, updatedAt string
	err := scan(
		&unit.UnitID, &unit.ItemID, &unit.Code, &unit.Status, &unit.Note,
		&unit.LoanID, &createdAt, &updatedAt, &unit.EverLoaned,
	)
	if err != nil {
		return nil, err
	}
	if unit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if unit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &unit, nil
}
