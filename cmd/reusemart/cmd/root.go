// Package cmd provides the CLI commands for the ReuseMart client.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/config"
)

var (
	cfgFile      string
	storePath    string
	outputFormat string
	devMode      bool
)

var rootCmd = &cobra.Command{
	Use:   "reusemart",
	Short: "ReuseMart - second-hand marketplace client",
	Long: `reusemart is the command-line client for the ReuseMart marketplace.

A single login serves every role. After logging in, profile and history
show the screen for the stored role: buyer (pembeli), consignor (penitip),
courier (kurir) or hunter.

Quick start:
  1. reusemart login --email you@example.com
  2. reusemart profile

Configuration:
  Config is loaded from reusemart.yaml in the current directory,
  $HOME/.reusemart/, or /etc/reusemart/.

  Environment variables can override config values with the REUSEMART_ prefix.
  Example: REUSEMART_BACKEND_BASE_URL=http://127.0.0.1:8000/api

Commands:
  login         Log in, or continue as a guest with --guest
  logout        Clear the stored session
  whoami        Show the stored role and the view it dispatches to
  profile       Show the profile screen for your role
  history       Show orders, consignments, deliveries or commissions
  order         Show one order
  rate          Rate a purchased item
  tasks         List delivery tasks (couriers)
  complete      Mark a delivery task done (couriers)
  commissions   List commissions (hunters)
  merch         Browse and claim merchandise with loyalty points
  notifications List and read notifications
  products      Browse the catalog
  top-sellers   Show the current top-seller badges
  reset         Remove the stored session files
  version       Print version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./reusemart.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "path to the credential store (default: $HOME/.reusemart/credentials.json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, yaml or json")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable development mode (local backend, debug logging)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// loadConfig reads the config and applies CLI overrides before validating.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// parseLogLevel converts a config log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
