package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/adapter/outbound/state"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the stored session files",
	Long: `Reset by removing the credential store and its companion files.

Unlike logout, reset does not need a readable store: use it when the
credentials file is corrupt or was written by another version.

Optional flags:
  --force   Skip confirmation prompt

Examples:
  # Interactive confirmation
  reusemart reset

  # Reset a specific store without prompting
  reusemart --store /tmp/credentials.json reset --force`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()

	var targets []string
	switch cfg.Store.Driver {
	case "memory":
		fmt.Fprintln(stderr, "The memory store keeps nothing on disk; nothing to reset.")
		return nil
	case "sqlite":
		targets = []string{cfg.Store.Path, cfg.Store.Path + "-wal", cfg.Store.Path + "-shm"}
	default:
		targets = []string{cfg.Store.Path, cfg.Store.Path + ".bak", cfg.Store.Path + ".tmp", cfg.Store.Path + ".lock"}
	}

	var existing []string
	for _, p := range targets {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		fmt.Fprintln(stderr, "Nothing to reset, no session files found.")
		return nil
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	var fileStore *state.FileStore
	if cfg.Store.Driver == "file" {
		fileStore = state.NewFileStore(cfg.Store.Path, logger)
		if !fileStore.Exists() {
			fmt.Fprintf(stderr, "No credentials file at %s, only leftover companion files remain.\n", fileStore.Path())
		}
	}

	fmt.Fprintln(stderr, "The following will be removed:")
	for _, p := range existing {
		fmt.Fprintf(stderr, "  - %s\n", p)
	}
	if !newConfirmer(cmd, resetForce).Confirm("\nProceed?") {
		fmt.Fprintln(stderr, "Aborted.")
		return nil
	}

	if fileStore != nil {
		if err := fileStore.Wipe(); err != nil {
			return fmt.Errorf("reset credential store: %w", err)
		}
	} else {
		var errs []error
		for _, p := range existing {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("reset credential store: %w", err)
		}
	}

	fmt.Fprintln(stderr, "Reset complete. Log in again to start a new session.")
	return nil
}
