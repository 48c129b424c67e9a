// Loan commands: direct checkout, returns, and the overdue report.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/internal/circulation"
	"github.com/openshelf/biblio/pkg/types"
)

var (
	loanKind       string
	loanBorrowerID string
	loanBorrower   string
	loanIssue      string
	loanNote       string
	loanActiveOnly bool
)

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Manage loans",
}

var loanCheckoutCmd = &cobra.Command{
	Use:   "checkout <item-id>",
	Short: "Open a loan directly, without a preceding request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("loan checkout", err)
		}
		defer backend.Detach()

		borrower := types.Identity{
			UserID: loanBorrowerID,
			Name:   loanBorrower,
			Role:   types.RoleUser,
		}
		loan, err := circulation.NewLedger(backend).Checkout(actor(), args[0], borrower, loanKind)
		if err != nil {
			exitErr("loan checkout", err)
		}

		if flagJSON {
			printJSON(loan)
		} else {
			fmt.Printf("Checked out %q [%s] to %s, due %s\n",
				loan.ItemTitle, loan.UnitCode, loan.BorrowerName, loan.DueAt.Format(time.RFC3339))
		}
		return nil
	},
}

var loanReturnCmd = &cobra.Command{
	Use:   "return <loan-id>",
	Short: "Close a loan; --issue routes the copy to repair or retires it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("loan return", err)
		}
		defer backend.Detach()

		if err := circulation.NewLedger(backend).ReturnLoan(actor(), args[0], loanIssue, loanNote); err != nil {
			exitErr("loan return", err)
		}
		fmt.Printf("Returned loan %s\n", args[0])
		return nil
	},
}

var loanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loans, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("loan list", err)
		}
		defer backend.Detach()

		loans, err := circulation.NewLedger(backend).ListLoans(loanActiveOnly)
		if err != nil {
			exitErr("loan list", err)
		}

		if flagJSON {
			printJSON(loans)
			return nil
		}
		printLoans(loans)
		return nil
	},
}

var loanOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List active loans past their due date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("loan overdue", err)
		}
		defer backend.Detach()

		loans, err := circulation.NewLedger(backend).ListOverdue(time.Now().UTC())
		if err != nil {
			exitErr("loan overdue", err)
		}

		if flagJSON {
			printJSON(loans)
			return nil
		}
		printLoans(loans)
		return nil
	},
}

func printLoans(loans []types.Loan) {
	for _, loan := range loans {
		fmt.Printf("%s  %-8s  %-25s  %-8s  %s  due %s\n",
			loan.LoanID, loan.State, loan.ItemTitle, loan.UnitCode,
			loan.BorrowerName, loan.DueAt.Format("2006-01-02 15:04"))
	}
}

func init() {
	loanCheckoutCmd.Flags().StringVar(&loanKind, "kind", types.LoanKindExternal, "loan kind (internal, external)")
	loanCheckoutCmd.Flags().StringVar(&loanBorrowerID, "borrower-id", "", "borrower user ID (required)")
	loanCheckoutCmd.Flags().StringVar(&loanBorrower, "borrower", "", "borrower display name")
	loanCheckoutCmd.MarkFlagRequired("borrower-id")

	loanReturnCmd.Flags().StringVar(&loanIssue, "issue", "", "issue on return (damaged, lost)")
	loanReturnCmd.Flags().StringVar(&loanNote, "note", "", "what happened")

	loanListCmd.Flags().BoolVar(&loanActiveOnly, "active", false, "only active loans")

	loanCmd.AddCommand(loanCheckoutCmd)
	loanCmd.AddCommand(loanReturnCmd)
	loanCmd.AddCommand(loanListCmd)
	loanCmd.AddCommand(loanOverdueCmd)
}
