package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/biblio/pkg/types"
)

func TestLoansCheckout(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "claims a unit and records the loan",
			check: func(t *testing.T, b *Backend) {
				itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
				unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
				require.NoError(t, err)

				unit, err := b.Units().Get(unitID)
				require.NoError(t, err)
				assert.Equal(t, types.UnitStatusLoaned, unit.Status)
				assert.NotEmpty(t, unit.LoanID)

				loan, err := b.Loans().Get(unit.LoanID)
				require.NoError(t, err)
				assert.Equal(t, types.LoanStateActive, loan.State)
				assert.Equal(t, "ada", loan.BorrowerID)
				assert.Equal(t, "Atlas", loan.ItemTitle)
				assert.Equal(t, "A1", loan.UnitCode)
				assert.False(t, loan.CheckedOutAt.IsZero())
			},
		},
		{
			name: "always claims the lowest available unit",
			check: func(t *testing.T, b *Backend) {
				itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1", "A2", "A3")
				units, err := b.Units().ListByItem(itemID)
				require.NoError(t, err)

				for i := range units {
					unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
					require.NoError(t, err)
					assert.Equal(t, units[i].UnitID, unitID)
				}
			},
		},
		{
			name: "exhausted inventory reports no units available",
			check: func(t *testing.T, b *Backend) {
				itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
				_, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
				require.NoError(t, err)

				_, err = b.Loans().Checkout(itemID, testLoan("grace"), 3)
				assert.ErrorIs(t, err, types.ErrNoUnitsAvailable)
				assert.ErrorIs(t, err, types.ErrConflict)
			},
		},
		{
			name: "reserved and repairing units are never claimed",
			check: func(t *testing.T, b *Backend) {
				itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1", "A2")
				units, err := b.Units().ListByItem(itemID)
				require.NoError(t, err)
				now := time.Now().UTC()
				require.NoError(t, b.Units().ReportIssue(units[0].UnitID, types.UnitStatusUnderRepair, "", now))

				unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
				require.NoError(t, err)
				assert.Equal(t, units[1].UnitID, unitID)
			},
		},
		{
			name: "unknown item reports not found",
			check: func(t *testing.T, b *Backend) {
				_, err := b.Loans().Checkout("absent", testLoan("ada"), 3)
				assert.ErrorIs(t, err, types.ErrNoUnitsAvailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newTestBackend(t))
		})
	}
}

func TestLoansReturn(t *testing.T) {
	now := time.Now().UTC()

	t.Run("closes the loan and frees the unit", func(t *testing.T) {
		b := newTestBackend(t)
		itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
		unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
		require.NoError(t, err)
		loan, err := b.Loans().ActiveByUnit(unitID)
		require.NoError(t, err)

		require.NoError(t, b.Loans().Return(loan.LoanID, types.UnitStatusAvailable, "", now))

		closed, err := b.Loans().Get(loan.LoanID)
		require.NoError(t, err)
		assert.Equal(t, types.LoanStateReturned, closed.State)
		assert.False(t, closed.ReturnedAt.IsZero())

		unit, err := b.Units().Get(unitID)
		require.NoError(t, err)
		assert.Equal(t, types.UnitStatusAvailable, unit.Status)
		assert.Empty(t, unit.LoanID)
		assert.True(t, unit.EverLoaned)

		_, err = b.Loans().ActiveByUnit(unitID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("return with reported damage routes the unit to repair", func(t *testing.T) {
		b := newTestBackend(t)
		itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
		unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
		require.NoError(t, err)
		loan, err := b.Loans().ActiveByUnit(unitID)
		require.NoError(t, err)

		require.NoError(t, b.Loans().Return(loan.LoanID, types.UnitStatusUnderRepair, "cracked cover", now))

		unit, err := b.Units().Get(unitID)
		require.NoError(t, err)
		assert.Equal(t, types.UnitStatusUnderRepair, unit.Status)

		closed, err := b.Loans().Get(loan.LoanID)
		require.NoError(t, err)
		assert.Contains(t, closed.Note, "cracked cover")
	})

	t.Run("double return is rejected and leaves the unit alone", func(t *testing.T) {
		b := newTestBackend(t)
		itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1")
		unitID, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
		require.NoError(t, err)
		loan, err := b.Loans().ActiveByUnit(unitID)
		require.NoError(t, err)
		require.NoError(t, b.Loans().Return(loan.LoanID, types.UnitStatusAvailable, "", now))

		// The unit went back out to someone else in the meantime.
		_, err = b.Loans().Checkout(itemID, testLoan("grace"), 3)
		require.NoError(t, err)

		err = b.Loans().Return(loan.LoanID, types.UnitStatusAvailable, "", now)
		assert.ErrorIs(t, err, types.ErrLoanReturned)
		assert.ErrorIs(t, err, types.ErrState)

		unit, err := b.Units().Get(unitID)
		require.NoError(t, err)
		assert.Equal(t, types.UnitStatusLoaned, unit.Status)
	})

	t.Run("unknown loan reports not found", func(t *testing.T) {
		b := newTestBackend(t)
		err := b.Loans().Return("absent", types.UnitStatusAvailable, "", now)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestLoansListOverdue(t *testing.T) {
	b := newTestBackend(t)
	now := time.Now().UTC()

	itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1", "A2", "A3")

	// Past due, due right now, and due later.
	late := testLoan("ada")
	late.DueAt = now.Add(-time.Hour)
	_, err := b.Loans().Checkout(itemID, late, 3)
	require.NoError(t, err)

	exact := testLoan("grace")
	exact.DueAt = now
	_, err = b.Loans().Checkout(itemID, exact, 3)
	require.NoError(t, err)

	future := testLoan("linus")
	future.DueAt = now.Add(time.Hour)
	_, err = b.Loans().Checkout(itemID, future, 3)
	require.NoError(t, err)

	overdue, err := b.Loans().ListOverdue(now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "ada", overdue[0].BorrowerID)

	// Returning the late loan clears the report.
	require.NoError(t, b.Loans().Return(overdue[0].LoanID, types.UnitStatusAvailable, "", now))
	overdue, err = b.Loans().ListOverdue(now)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestLoansList(t *testing.T) {
	b := newTestBackend(t)
	now := time.Now().UTC()

	itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1", "A2")
	_, err := b.Loans().Checkout(itemID, testLoan("ada"), 3)
	require.NoError(t, err)
	unitID, err := b.Loans().Checkout(itemID, testLoan("grace"), 3)
	require.NoError(t, err)
	second, err := b.Loans().ActiveByUnit(unitID)
	require.NoError(t, err)
	require.NoError(t, b.Loans().Return(second.LoanID, types.UnitStatusAvailable, "", now))

	all, err := b.Loans().List(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := b.Loans().List(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ada", active[0].BorrowerID)
}
