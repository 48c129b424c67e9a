// Shared helpers for biblio CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/openshelf/biblio/internal/sqlite"
	"github.com/openshelf/biblio/pkg/types"
)

// attachBackend resolves the data directory, builds the runtime config
// from config.yaml, and attaches a SQLite backend. The caller must defer
// backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	config := types.Config{
		Backend: cfg.GetString(cfgKeyBackend),
		DataDir: dataDir,
		Circulation: types.CirculationConfig{
			InternalLoanHours: cfg.GetInt(cfgKeyInternalLoanHours),
			ExternalLoanDays:  cfg.GetInt(cfgKeyExternalLoanDays),
			ClaimRetries:      cfg.GetInt(cfgKeyClaimRetries),
		},
		Notifications: types.NotificationConfig{
			RequestWindowHours: cfg.GetInt(cfgKeyRequestWindow),
			RefreshSchedule:    cfg.GetString(cfgKeyRefreshSchedule),
		},
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(config); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}

// actor builds the caller identity from the global identity flags.
func actor() types.Identity {
	return types.Identity{
		UserID: flagUserID,
		Name:   flagUserName,
		Role:   flagRole,
	}
}

// exitErr prints the error and exits: storage failures are system errors,
// everything else is on the caller.
func exitErr(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, err)
	if errors.Is(err, types.ErrStorage) {
		os.Exit(exitSysError)
	}
	os.Exit(exitUserError)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal JSON:", err)
		os.Exit(exitSysError)
	}
	fmt.Println(string(out))
}
