package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

var (
	cfgPath  string
	logLevel string
	verbose  bool
)

// resolveRequestedLogLevel prefers an explicit --log-level; --verbose is a
// shorthand for debug.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd != nil {
		if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
			return "debug"
		}
	}
	return ""
}

// createRootCommand creates the rpm-mirror root command
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpm-mirror",
		Short: "Maintain a local mirror of RPM package repositories",
		Long: `rpm-mirror keeps a local mirror directory tree in sync with a catalog of
desired packages. It classifies each catalog entry against the artifacts
already on disk, retrieves missing or outdated packages through dnf, and
regenerates repository index metadata only for repositories that changed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := resolveRequestedLogLevel(cmd)
			if level == "" {
				level = "info"
			}
			z, err := logger.New(level)
			if err != nil {
				return err
			}
			logger.Init(z)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "mirror.yml",
		"Path to the mirror configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Shorthand for --log-level debug")

	rootCmd.AddCommand(createSyncCommand())
	rootCmd.AddCommand(createValidateCommand())
	return rootCmd
}

func main() {
	if err := createRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
