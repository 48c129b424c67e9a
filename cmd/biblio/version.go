// Version command for the biblio CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshelf/biblio/pkg/biblio"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the biblio version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("biblio", biblio.Version)
	},
}
