// Alerts command: the derived staff notification feed.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/internal/notify"
)

var alertsWatch bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show the alert feed: recent requests and overdue loans",
	Long: `Alerts derives the staff notification feed from live circulation state:
pending requests from the recency window first, then overdue loans.
Nothing is stored; every run reads the ledger fresh.

With --watch the feed re-derives on the configured refresh schedule until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("alerts", err)
		}
		defer backend.Detach()

		deriver := notify.NewDeriver(backend)

		if !alertsWatch {
			alerts, err := deriver.Derive(actor(), time.Now().UTC())
			if err != nil {
				exitErr("alerts", err)
			}
			printAlerts(alerts)
			return nil
		}

		schedule := backend.Config().Notifications.GetRefreshSchedule()
		refresher := notify.NewRefresher(deriver, actor(), schedule, func(alerts []notify.Alert, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, "alerts:", err)
				return
			}
			fmt.Println("---", time.Now().UTC().Format(time.RFC3339))
			printAlerts(alerts)
		})
		if err := refresher.Start(); err != nil {
			exitErr("alerts", err)
		}
		defer refresher.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func printAlerts(alerts []notify.Alert) {
	if flagJSON {
		printJSON(alerts)
		return
	}
	if len(alerts) == 0 {
		fmt.Println("No alerts")
		return
	}
	for _, alert := range alerts {
		fmt.Printf("%3d  [%s]  %s\n", alert.Seq, alert.Kind, alert.Message)
	}
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsWatch, "watch", false, "keep refreshing on the configured schedule")
}
