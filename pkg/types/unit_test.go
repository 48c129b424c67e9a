package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"available to loaned on checkout", UnitStatusAvailable, UnitStatusLoaned, true},
		{"loaned back to available on return", UnitStatusLoaned, UnitStatusAvailable, true},
		{"available to reserved on approval", UnitStatusAvailable, UnitStatusReserved, true},
		{"reserved to loaned on handoff", UnitStatusReserved, UnitStatusLoaned, true},
		{"reserved released on denial", UnitStatusReserved, UnitStatusAvailable, true},
		{"available to repair", UnitStatusAvailable, UnitStatusUnderRepair, true},
		{"loaned to repair", UnitStatusLoaned, UnitStatusUnderRepair, true},
		{"repair completion", UnitStatusUnderRepair, UnitStatusAvailable, true},
		{"loss from available", UnitStatusAvailable, UnitStatusLost, true},
		{"loss from loaned", UnitStatusLoaned, UnitStatusLost, true},
		{"loss from repair", UnitStatusUnderRepair, UnitStatusLost, true},
		{"lost is terminal", UnitStatusLost, UnitStatusAvailable, false},
		{"lost never loaned again", UnitStatusLost, UnitStatusLoaned, false},
		{"loaned cannot be reserved", UnitStatusLoaned, UnitStatusReserved, false},
		{"repair cannot go straight to loaned", UnitStatusUnderRepair, UnitStatusLoaned, false},
		{"unknown status has no transitions", "mislaid", UnitStatusAvailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateUnitCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"single letter", "A", nil},
		{"alphanumeric", "A1", nil},
		{"six characters at the limit", "ABC123", nil},
		{"digits only", "001", nil},
		{"seven characters rejected", "ABC1234", ErrInvalidCode},
		{"lowercase rejected", "ab1", ErrInvalidCode},
		{"empty rejected", "", ErrInvalidCode},
		{"punctuation rejected", "A-1", ErrInvalidCode},
		{"whitespace rejected", "A 1", ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUnitCode(tt.code)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestLoanModeAllows(t *testing.T) {
	assert.True(t, LoanModeAllows(LoanModeInternalOnly, LoanKindInternal))
	assert.False(t, LoanModeAllows(LoanModeInternalOnly, LoanKindExternal))
	assert.False(t, LoanModeAllows(LoanModeExternalOnly, LoanKindInternal))
	assert.True(t, LoanModeAllows(LoanModeExternalOnly, LoanKindExternal))
	assert.True(t, LoanModeAllows(LoanModeEither, LoanKindInternal))
	assert.True(t, LoanModeAllows(LoanModeEither, LoanKindExternal))
	assert.False(t, LoanModeAllows("", LoanKindInternal))
}
