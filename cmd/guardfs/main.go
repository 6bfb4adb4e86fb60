// Package main is the entry point for the guardfs MCP server.
//
// The startup sequence:
//
// 1. Initialize logging system
// 2. Load configuration (file, then flag overrides)
// 3. Build the tool server with its policy and admission gate
// 4. Serve MCP over stdio until the client disconnects
//
// All logs go to stderr; stdout is reserved for the protocol stream.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"guardfs/internal/config"
	"guardfs/internal/logging"
	"guardfs/internal/policy"
	"guardfs/internal/server"
)

var (
	flagConfig   string
	flagRoot     string
	flagReadOnly bool
	flagRate     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "guardfs",
		Short: "Policy-enforcing filesystem MCP server",
		Long: "guardfs exposes filesystem operations as MCP tools over stdio.\n" +
			"Every operation is rate limited and validated against a declarative\n" +
			"access policy before any I/O happens.",
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a config file (default: the XDG config location)")
	rootCmd.Flags().StringVarP(&flagRoot, "root", "r", "", "restrict access to this directory")
	rootCmd.Flags().BoolVar(&flagReadOnly, "read-only", false, "disable all write operations")
	rootCmd.Flags().StringVar(&flagRate, "rate", "", "rate limit: permissive, moderate, strict or requests per second")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	appLogger := logging.NewAppLogger()

	cfg, err := loadConfig()
	if err != nil {
		appLogger.Error("Failed to load configuration", "error", err)
		return err
	}

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize server", "error", err)
		return err
	}

	if err := srv.Serve(); err != nil {
		appLogger.Error("Server stopped with error", "error", err)
		return err
	}
	return nil
}

// loadConfig resolves the effective configuration: the config file first,
// then the command line flags on top of it.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flagRoot != "" {
		cfg.AccessPolicy = policy.Restricted(flagRoot)
	}
	if flagReadOnly {
		cfg.AccessPolicy.ReadOnly = true
	}
	if flagRate != "" {
		cfg.Server.RateLimit = flagRate
	}
	if _, err := cfg.Server.Gate(); err != nil {
		return nil, fmt.Errorf("invalid --rate value: %w", err)
	}

	return cfg, nil
}
