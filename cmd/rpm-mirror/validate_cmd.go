package main

import (
	"github.com/spf13/cobra"

	"github.com/edge-curation/rpm-mirror/internal/config"
	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the mirror configuration file",
		Long: `Validate loads the configuration file, applies defaults and checks it for
errors without performing any mirror work.`,
		Args: cobra.NoArgs,
		RunE: executeValidate,
	}
	return validateCmd
}

// executeValidate handles the validate command logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log.Infof("✓ Configuration valid: %s", cfgPath)
	log.Infof("Root: %s", cfg.RootDir)
	log.Infof("Repositories: %d configured, %d manual", len(cfg.Repositories), len(cfg.ManualRepos))
	log.Infof("Batching: max %d packages per call, %d concurrent repositories, %ds timeout",
		cfg.MaxBatchSize, cfg.MaxConcurrent, cfg.FetchTimeoutSec)

	if verbose {
		for _, repo := range cfg.Repositories {
			log.Infof("  - %s -> %s (upstream %s)", repo.Name, cfg.RepoPath(repo), cfg.UpstreamID(repo))
		}
	}
	return nil
}
