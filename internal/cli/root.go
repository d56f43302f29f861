// Package cli implements the crop-editor command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/crop-editor/internal/config"
)

// Version information - set by SetVersion from main
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "crop-editor",
	Short: "Interactive crop-and-edit image editor",
	Long: `crop-editor loads an image, lets a client select a region on a scaled
preview, crops the full-resolution original to it and applies grayscale,
rotation, brightness and resize edits with undo/redo.

Without a subcommand it runs the stdio tool server (same as "serve").
stdout carries the protocol; logs go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		fmt.Sprintf("config file (default ~/%s/%s)", config.ConfigDirName, config.ConfigFileName))
}

// SetVersion records build information for the version command and the
// server handshake.
func SetVersion(v, built, commit string) {
	version, buildTime, gitCommit = v, built, commit
}

// ExecuteContext runs the root command. Cancelling ctx stops a replay
// between steps.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newLoader returns the loader for --config, or the default location.
func newLoader() (*config.Loader, error) {
	if configPath != "" {
		return config.NewLoaderWithPath(configPath), nil
	}
	return config.NewLoader()
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, *slog.Logger, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	// stdout is reserved for protocol and command output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}
