package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoanOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state string
		due   time.Time
		want  bool
	}{
		{"active past due", LoanStateActive, now.Add(-time.Hour), true},
		{"active due exactly now is not overdue", LoanStateActive, now, false},
		{"active due in the future", LoanStateActive, now.Add(time.Hour), false},
		{"returned loan never overdue", LoanStateReturned, now.Add(-48 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loan{State: tt.state, DueAt: tt.due}
			assert.Equal(t, tt.want, l.Overdue(now))
		})
	}
}

func TestRequestStateTerminal(t *testing.T) {
	assert.False(t, RequestStateTerminal(RequestStatePending))
	assert.True(t, RequestStateTerminal(RequestStateApproved))
	assert.True(t, RequestStateTerminal(RequestStateDenied))
	assert.True(t, RequestStateTerminal(RequestStateExpired))
}
