// Series commands: the flat series-membership lookup.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/internal/catalog"
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Manage series",
}

var seriesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("series add", err)
		}
		defer backend.Detach()

		ser, err := catalog.NewService(backend).CreateSeries(actor(), args[0])
		if err != nil {
			exitErr("series add", err)
		}
		fmt.Printf("Created series %s: %s\n", ser.SeriesID, ser.Name)
		return nil
	},
}

var seriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List series by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("series list", err)
		}
		defer backend.Detach()

		all, err := catalog.NewService(backend).ListSeries()
		if err != nil {
			exitErr("series list", err)
		}

		if flagJSON {
			printJSON(all)
			return nil
		}
		for _, ser := range all {
			fmt.Printf("%s  %s\n", ser.SeriesID, ser.Name)
		}
		return nil
	},
}

var seriesRenameCmd = &cobra.Command{
	Use:   "rename <series-id> <name>",
	Short: "Rename a series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("series rename", err)
		}
		defer backend.Detach()

		if err := catalog.NewService(backend).RenameSeries(actor(), args[0], args[1]); err != nil {
			exitErr("series rename", err)
		}
		fmt.Printf("Renamed series %s\n", args[0])
		return nil
	},
}

var seriesDeleteCmd = &cobra.Command{
	Use:   "delete <series-id>",
	Short: "Delete a series; member items drop the membership",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			exitErr("series delete", err)
		}
		defer backend.Detach()

		if err := catalog.NewService(backend).DeleteSeries(actor(), args[0]); err != nil {
			exitErr("series delete", err)
		}
		fmt.Printf("Deleted series %s\n", args[0])
		return nil
	},
}

func init() {
	seriesCmd.AddCommand(seriesAddCmd)
	seriesCmd.AddCommand(seriesListCmd)
	seriesCmd.AddCommand(seriesRenameCmd)
	seriesCmd.AddCommand(seriesDeleteCmd)
}
