package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/biblio/pkg/types"
)

func TestUnitsSetCode(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "assigns a valid code to an uncoded unit",
			check: func(t *testing.T, b *Backend) {
				item := &types.CatalogItem{Title: "Drafts", LoanMode: types.LoanModeEither, DeclaredUnits: 1}
				itemID, err := b.Items().Create(item, nil)
				require.NoError(t, err)
				units, err := b.Units().ListByItem(itemID)
				require.NoError(t, err)

				require.NoError(t, b.Units().SetCode(units[0].UnitID, "Z9"))
				got, err := b.Units().Get(units[0].UnitID)
				require.NoError(t, err)
				assert.Equal(t, "Z9", got.Code)
			},
		},
		{
			name: "rejects malformed codes server-side",
			check: func(t *testing.T, b *Backend) {
				itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
				units, err := b.Units().ListByItem(itemID)
				require.NoError(t, err)

				for _, bad := range []string{"toolong7", "ab1", "A-1"} {
					assert.ErrorIs(t, b.Units().SetCode(units[0].UnitID, bad), types.ErrInvalidCode)
				}
			},
		},
		{
			name: "codes are unique across the whole registry",
			check: func(t *testing.T, b *Backend) {
				newTestItem(t, b, "First", types.LoanModeEither, "X1")
				otherID := newTestItem(t, b, "Second", types.LoanModeEither, "Y1")
				units, err := b.Units().ListByItem(otherID)
				require.NoError(t, err)

				err = b.Units().SetCode(units[0].UnitID, "X1")
				assert.ErrorIs(t, err, types.ErrCodeTaken)
				assert.ErrorIs(t, err, types.ErrConflict)
			},
		},
		{
			name: "setting the same code again is a no-op",
			check: func(t *testing.T, b *Backend) {
				itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
				units, err := b.Units().ListByItem(itemID)
				require.NoError(t, err)
				assert.NoError(t, b.Units().SetCode(units[0].UnitID, "A1"))
			},
		},
		{
			name: "code is immutable once the unit has loan history",
			check: func(t *testing.T, b *Backend) {
				itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
				unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
				require.NoError(t, err)
				loan, err := b.Loans().ActiveByUnit(unitID)
				require.NoError(t, err)
				require.NoError(t, b.Loans().Return(loan.LoanID, types.UnitStatusAvailable, "", time.Now().UTC()))

				err = b.Units().SetCode(unitID, "B2")
				assert.ErrorIs(t, err, types.ErrCodeLocked)
				assert.ErrorIs(t, err, types.ErrState)

				// Re-stating the current code still succeeds.
				assert.NoError(t, b.Units().SetCode(unitID, "A1"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newTestBackend(t))
		})
	}
}

func TestUnitsReportIssue(t *testing.T) {
	now := time.Now().UTC()

	t.Run("damage report moves an available unit under repair", func(t *testing.T) {
		b := newTestBackend(t)
		itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
		units, err := b.Units().ListByItem(itemID)
		require.NoError(t, err)

		require.NoError(t, b.Units().ReportIssue(units[0].UnitID, types.UnitStatusUnderRepair, "torn spine", now))
		got, err := b.Units().Get(units[0].UnitID)
		require.NoError(t, err)
		assert.Equal(t, types.UnitStatusUnderRepair, got.Status)
		assert.Equal(t, "torn spine", got.Note)
	})

	t.Run("report against a loaned unit force-closes the loan", func(t *testing.T) {
		b := newTestBackend(t)
		itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
		unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
		require.NoError(t, err)
		loan, err := b.Loans().ActiveByUnit(unitID)
		require.NoError(t, err)

		require.NoError(t, b.Units().ReportIssue(unitID, types.UnitStatusUnderRepair, "water damage", now))

		closed, err := b.Loans().Get(loan.LoanID)
		require.NoError(t, err)
		assert.Equal(t, types.LoanStateReturned, closed.State)
		assert.Contains(t, closed.Note, "water damage")
		assert.False(t, closed.ReturnedAt.IsZero())

		unit, err := b.Units().Get(unitID)
		require.NoError(t, err)
		assert.Equal(t, types.UnitStatusUnderRepair, unit.Status)
		assert.Empty(t, unit.LoanID)
	})

	t.Run("lost is terminal", func(t *testing.T) {
		b := newTestBackend(t)
		itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
		units, err := b.Units().ListByItem(itemID)
		require.NoError(t, err)
		unitID := units[0].UnitID

		require.NoError(t, b.Units().ReportIssue(unitID, types.UnitStatusLost, "", now))

		err = b.Units().ReportIssue(unitID, types.UnitStatusUnderRepair, "", now)
		assert.ErrorIs(t, err, types.ErrInvalidTransition)
		err = b.Units().CompleteRepair(unitID, now)
		assert.ErrorIs(t, err, types.ErrInvalidTransition)
	})

	t.Run("repair completion returns the unit to circulation", func(t *testing.T) {
		b := newTestBackend(t)
		itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
		units, err := b.Units().ListByItem(itemID)
		require.NoError(t, err)
		unitID := units[0].UnitID

		require.NoError(t, b.Units().ReportIssue(unitID, types.UnitStatusUnderRepair, "", now))
		require.NoError(t, b.Units().CompleteRepair(unitID, now))

		got, err := b.Units().Get(unitID)
		require.NoError(t, err)
		assert.Equal(t, types.UnitStatusAvailable, got.Status)
	})

	t.Run("unknown unit reports not found", func(t *testing.T) {
		b := newTestBackend(t)
		err := b.Units().ReportIssue("absent", types.UnitStatusLost, "", now)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
