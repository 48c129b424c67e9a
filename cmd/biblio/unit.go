// Unit commands: coding, notes, and issue reports on physical copies.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/internal/catalog"
	"github.com/openshelf/biblio/internal/circulation"
	"github.com/openshelf/biblio/pkg/types"
)

var unitIssueNote string

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Manage physical copies",
}

var unitGetCmd = &cobra.Command{
	Use:   "get <unit-id>",
	Short: "Show one unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("unit get", err)
		}
		defer backend.Detach()

		unit, err := catalog.NewService(backend).GetUnit(args[0])
		if err != nil {
			exitErr("unit get", err)
		}

		if flagJSON {
			printJSON(unit)
			return nil
		}
		code := unit.Code
		if code == "" {
			code = "(uncoded)"
		}
		fmt.Printf("%s  %-10s  %s\n", unit.UnitID, code, unit.Status)
		if unit.Note != "" {
			fmt.Println("  note:", unit.Note)
		}
		if unit.Status == types.UnitStatusLoaned {
			if loan, err := circulation.NewLedger(backend).GetUnitLoan(unit.UnitID); err == nil {
				fmt.Printf("  on loan to %s, due %s\n", loan.BorrowerName, loan.DueAt.Format(time.RFC3339))
			}
		}
		return nil
	},
}

var unitCodeCmd = &cobra.Command{
	Use:   "code <unit-id> <code>",
	Short: "Assign or correct a unit's short code",
	Long:  `Code assigns the physical label code to a unit: up to six uppercase letters and digits, unique across all copies. Codes freeze once the unit has circulated.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("unit code", err)
		}
		defer backend.Detach()

		if err := catalog.NewService(backend).SetUnitCode(actor(), args[0], args[1]); err != nil {
			exitErr("unit code", err)
		}
		fmt.Printf("Coded unit %s as %s\n", args[0], args[1])
		return nil
	},
}

var unitNoteCmd = &cobra.Command{
	Use:   "note <unit-id> <note>",
	Short: "Replace a unit's free-form note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("unit note", err)
		}
		defer backend.Detach()

		if err := catalog.NewService(backend).SetUnitNote(actor(), args[0], args[1]); err != nil {
			exitErr("unit note", err)
		}
		fmt.Printf("Noted unit %s\n", args[0])
		return nil
	},
}

var unitReportCmd = &cobra.Command{
	Use:   "report <unit-id> <damaged|lost>",
	Short: "Report a unit damaged or lost",
	Long:  `Report flags a copy outside of a return. A copy currently out on loan has its loan force-closed. Lost is terminal.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("unit report", err)
		}
		defer backend.Detach()

		ledger := circulation.NewLedger(backend)
		if err := ledger.ReportUnitIssue(actor(), args[0], args[1], unitIssueNote); err != nil {
			exitErr("unit report", err)
		}
		fmt.Printf("Reported unit %s %s\n", args[0], args[1])
		return nil
	},
}

var unitRepairedCmd = &cobra.Command{
	Use:   "repaired <unit-id>",
	Short: "Return a repaired unit to circulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("unit repaired", err)
		}
		defer backend.Detach()

		if err := circulation.NewLedger(backend).CompleteRepair(actor(), args[0]); err != nil {
			exitErr("unit repaired", err)
		}
		fmt.Printf("Unit %s back in circulation\n", args[0])
		return nil
	},
}

func init() {
	unitReportCmd.Flags().StringVar(&unitIssueNote, "note", "", "what happened")

	unitCmd.AddCommand(unitGetCmd)
	unitCmd.AddCommand(unitCodeCmd)
	unitCmd.AddCommand(unitNoteCmd)
	unitCmd.AddCommand(unitReportCmd)
	unitCmd.AddCommand(unitRepairedCmd)
}
