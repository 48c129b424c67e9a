// Root command for the biblio CLI.
package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openshelf/biblio/internal/paths"
	"github.com/openshelf/biblio/pkg/biblio"
)

// Exit codes: 0 success, 1 user error, 2 system error.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool

	flagUserID   string
	flagUserName string
	flagRole     string
)

// cfg holds the loaded config.yaml values. Set by PersistentPreRunE so all
// subcommands can use it.
var cfg *viper.Viper

var rootCmd = &cobra.Command{
	Use:     "biblio",
	Short:   "Biblio is a local-first library circulation system",
	Version: biblio.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfg, err = loadConfig(configDir)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.biblio)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.biblio-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	// Caller identity, normally asserted by the auth layer in front of the
	// core. The CLI runs locally, so the operator states who they are.
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user-id", "local", "acting user ID")
	rootCmd.PersistentFlags().StringVar(&flagUserName, "user-name", "Local Operator", "acting user display name")
	rootCmd.PersistentFlags().StringVar(&flagRole, "role", "admin", "acting role (admin, supervisor, user)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(loanCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(seriesCmd)
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > BIBLIO_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	configDataDir := ""
	if cfg != nil {
		configDataDir = cfg.GetString(cfgKeyDataDir)
	}
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > BIBLIO_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
