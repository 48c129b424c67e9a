package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/biblio/pkg/types"
)

func TestRefresherDeliversToSink(t *testing.T) {
	d, b := newTestDeriver(t)
	seedItem(t, b, "Atlas", "A1")

	var got []Alert
	var gotErr error
	r := NewRefresher(d, admin, types.DefaultRefreshSchedule, func(alerts []Alert, err error) {
		got = alerts
		gotErr = err
	})

	r.refresh()
	require.NoError(t, gotErr)
	assert.Empty(t, got)

	// Errors reach the sink rather than vanishing.
	require.NoError(t, b.Detach())
	r.refresh()
	assert.ErrorIs(t, gotErr, types.ErrDetached)
}

func TestRefresherRejectsBadSchedule(t *testing.T) {
	d, _ := newTestDeriver(t)
	r := NewRefresher(d, admin, "every so often", func([]Alert, error) {})
	assert.Error(t, r.Start())

	// Stop before a successful start is a no-op.
	r.Stop()
}

func TestRefresherStartStop(t *testing.T) {
	d, _ := newTestDeriver(t)
	r := NewRefresher(d, admin, "@every 1h", func([]Alert, error) {})
	require.NoError(t, r.Start())
	r.Stop()
}
