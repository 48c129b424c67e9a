package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// mkUnits builds a unit slice with the given statuses.
func mkUnits(statuses ...string) []Unit {
	units := make([]Unit, len(statuses))
	for i, s := range statuses {
		units[i] = Unit{UnitID: "u", Status: s}
	}
	return units
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{
			name:     "single available unit",
			statuses: []string{UnitStatusAvailable},
			want:     UnitStatusAvailable,
		},
		{
			name:     "available wins over everything",
			statuses: []string{UnitStatusLost, UnitStatusLoaned, UnitStatusUnderRepair, UnitStatusAvailable},
			want:     UnitStatusAvailable,
		},
		{
			name:     "loaned when nothing available",
			statuses: []string{UnitStatusLoaned, UnitStatusUnderRepair, UnitStatusLost},
			want:     UnitStatusLoaned,
		},
		{
			name:     "under-repair when nothing available or loaned",
			statuses: []string{UnitStatusUnderRepair, UnitStatusLost},
			want:     UnitStatusUnderRepair,
		},
		{
			name:     "reserved and lost mix surfaces reserved",
			statuses: []string{UnitStatusReserved, UnitStatusLost, UnitStatusLost},
			want:     UnitStatusReserved,
		},
		{
			name:     "all reserved",
			statuses: []string{UnitStatusReserved, UnitStatusReserved},
			want:     UnitStatusReserved,
		},
		{
			name:     "lost only when all units are lost",
			statuses: []string{UnitStatusLost, UnitStatusLost, UnitStatusLost},
			want:     UnitStatusLost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateStatus(mkUnits(tt.statuses...)))
		})
	}
}

// The item is available iff at least one unit is available, and lost iff
// all units are lost, over every two-unit status combination.
func TestAggregateStatusProperties(t *testing.T) {
	all := []string{
		UnitStatusAvailable, UnitStatusLoaned, UnitStatusReserved,
		UnitStatusUnderRepair, UnitStatusLost,
	}
	for _, a := range all {
		for _, b := range all {
			got := AggregateStatus(mkUnits(a, b))
			if a == UnitStatusAvailable || b == UnitStatusAvailable {
				assert.Equal(t, UnitStatusAvailable, got, "%s+%s", a, b)
			} else {
				assert.NotEqual(t, UnitStatusAvailable, got, "%s+%s", a, b)
			}
			if a == UnitStatusLost && b == UnitStatusLost {
				assert.Equal(t, UnitStatusLost, got)
			} else {
				assert.NotEqual(t, UnitStatusLost, got, "%s+%s", a, b)
			}
		}
	}
}
