// Request commands: submission and decision of borrow requests.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/internal/circulation"
	"github.com/openshelf/biblio/pkg/types"
)

var (
	requestKind        string
	requestPendingOnly bool
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Manage borrow requests",
}

var requestSubmitCmd = &cobra.Command{
	Use:   "submit <item-id>",
	Short: "File a borrow request for an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("request submit", err)
		}
		defer backend.Detach()

		req, err := circulation.NewLedger(backend).SubmitRequest(actor(), args[0], requestKind)
		if err != nil {
			exitErr("request submit", err)
		}

		if flagJSON {
			printJSON(req)
		} else {
			fmt.Printf("Filed request %s for %q\n", req.RequestID, req.ItemTitle)
		}
		return nil
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("request list", err)
		}
		defer backend.Detach()

		requests, err := circulation.NewLedger(backend).ListRequests(requestPendingOnly)
		if err != nil {
			exitErr("request list", err)
		}

		if flagJSON {
			printJSON(requests)
			return nil
		}
		for _, req := range requests {
			fmt.Printf("%s  %-9s  %-8s  %-25s  by %s\n",
				req.RequestID, req.State, req.Kind, req.ItemTitle, req.RequesterName)
		}
		return nil
	},
}

var requestApproveCmd = &cobra.Command{
	Use:   "approve <request-id>",
	Short: "Approve a request; a copy goes out to the requester immediately",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("request approve", err)
		}
		defer backend.Detach()

		loan, err := circulation.NewLedger(backend).ApproveRequest(actor(), args[0])
		if err != nil {
			exitErr("request approve", err)
		}

		if flagJSON {
			printJSON(loan)
		} else {
			fmt.Printf("Approved: %q out to %s, due %s\n",
				loan.ItemTitle, loan.BorrowerName, loan.DueAt.Format(time.RFC3339))
		}
		return nil
	},
}

var requestReserveCmd = &cobra.Command{
	Use:   "reserve <request-id>",
	Short: "Hold a copy for a request pending pickup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("request reserve", err)
		}
		defer backend.Detach()

		unitID, err := circulation.NewLedger(backend).ReserveRequest(actor(), args[0])
		if err != nil {
			exitErr("request reserve", err)
		}
		fmt.Printf("Reserved unit %s\n", unitID)
		return nil
	},
}

var requestHandoffCmd = &cobra.Command{
	Use:   "handoff <request-id>",
	Short: "Hand a reserved copy to the borrower",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("request handoff", err)
		}
		defer backend.Detach()

		loan, err := circulation.NewLedger(backend).CompleteHandoff(actor(), args[0])
		if err != nil {
			exitErr("request handoff", err)
		}

		if flagJSON {
			printJSON(loan)
		} else {
			fmt.Printf("Handed off: %q out to %s, due %s\n",
				loan.ItemTitle, loan.BorrowerName, loan.DueAt.Format(time.RFC3339))
		}
		return nil
	},
}

var requestDenyCmd = &cobra.Command{
	Use:   "deny <request-id>",
	Short: "Deny a request, releasing any held copy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("request deny", err)
		}
		defer backend.Detach()

		if err := circulation.NewLedger(backend).DenyRequest(actor(), args[0]); err != nil {
			exitErr("request deny", err)
		}
		fmt.Printf("Denied request %s\n", args[0])
		return nil
	},
}

var requestExpireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire pending requests older than the configured window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("request expire", err)
		}
		defer backend.Detach()

		n, err := circulation.NewLedger(backend).ExpirePending(time.Now().UTC())
		if err != nil {
			exitErr("request expire", err)
		}
		fmt.Printf("Expired %d request(s)\n", n)
		return nil
	},
}

func init() {
	requestSubmitCmd.Flags().StringVar(&requestKind, "kind", types.LoanKindExternal, "loan kind (internal, external)")
	requestListCmd.Flags().BoolVar(&requestPendingOnly, "pending", false, "only pending requests")

	requestCmd.AddCommand(requestSubmitCmd)
	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestApproveCmd)
	requestCmd.AddCommand(requestReserveCmd)
	requestCmd.AddCommand(requestHandoffCmd)
	requestCmd.AddCommand(requestDenyCmd)
	requestCmd.AddCommand(requestExpireCmd)
}
