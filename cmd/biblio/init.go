// Init command creates the configuration and data directories and the
// database schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the biblio storage",
	Long:  `Initialize creates the configuration directory with a default config.yaml, the data directory, and an empty database.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Config dir and config.yaml were created by PersistentPreRunE;
		// attaching creates the data directory and schema.
		backend, err := attachBackend()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer backend.Detach()

		fmt.Println("biblio initialized:", backend.Config().DataDir)
		return nil
	},
}
