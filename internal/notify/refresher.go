package notify

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/biblio/pkg/types"
)

// Sink receives each derived feed. Derivation errors go to the sink too
// so a broken store surfaces in the feed consumer instead of vanishing.
type Sink func(alerts []Alert, err error)

// Refresher re-derives the alert feed on the configured cron schedule and
// pushes each result to a sink. Alerts stay unstored; the refresher only
// keeps consumers current.
type Refresher struct {
	deriver  *Deriver
	viewer   types.Identity
	sink     Sink
	schedule string
	cron     *cron.Cron
}

// NewRefresher builds a refresher deriving the feed as the given viewer.
// The schedule comes from the notifications config.
func NewRefresher(deriver *Deriver, viewer types.Identity, schedule string, sink Sink) *Refresher {
	return &Refresher{
		deriver:  deriver,
		viewer:   viewer,
		sink:     sink,
		schedule: schedule,
	}
}

// Start registers the refresh job and starts the scheduler. The first
// derivation happens on the first tick, not at start.
func (r *Refresher) Start() error {
	c := cron.New()
	_, err := c.AddFunc(r.schedule, r.refresh)
	if err != nil {
		return err
	}
	r.cron = c
	c.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.cron = nil
}

func (r *Refresher) refresh() {
	alerts, err := r.deriver.Derive(r.viewer, time.Now().UTC())
	r.sink(alerts, err)
}
