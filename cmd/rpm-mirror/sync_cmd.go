package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/edge-curation/rpm-mirror/internal/app"
	"github.com/edge-curation/rpm-mirror/internal/config"
	"github.com/edge-curation/rpm-mirror/internal/fetcher"
	"github.com/edge-curation/rpm-mirror/internal/mirror"
	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

var (
	syncForce      bool
	syncDryRun     bool
	syncFullUpdate bool
	syncNoProgress bool
)

// createSyncCommand creates the sync subcommand
func createSyncCommand() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync [flags] [CATALOG_FILE]",
		Short: "Synchronize the mirror against a package catalog",
		Long: `Sync reads the desired-package catalog (from CATALOG_FILE or stdin),
downloads missing and outdated packages per repository and regenerates index
metadata for the repositories that changed. Catalog records have the form
name|epoch|version|release|architecture|repository, one per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: executeSync,
	}

	syncCmd.Flags().BoolVar(&syncForce, "force", false,
		"Pre-remove local artifacts before retrieval and re-download existing packages")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false,
		"Classify and report without downloading, removing or regenerating anything")
	syncCmd.Flags().BoolVar(&syncFullUpdate, "full-metadata-update", false,
		"Regenerate metadata for every repository instead of only changed ones")
	syncCmd.Flags().BoolVar(&syncNoProgress, "no-progress", false,
		"Disable the download progress bar")
	return syncCmd
}

// executeSync handles the sync command execution logic
func executeSync(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.Force = cfg.Force || syncForce
	cfg.DryRun = cfg.DryRun || syncDryRun
	cfg.FullMetadataUpdate = cfg.FullMetadataUpdate || syncFullUpdate

	var catalogReader io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening catalog %s: %w", args[0], err)
		}
		defer f.Close()
		catalogReader = f
	}

	var (
		fetch mirror.Fetcher
		index mirror.Indexer
	)
	if !cfg.DryRun {
		// Required collaborators must be present before any per-package
		// work begins; missing ones are fatal to the whole run.
		dnf, err := fetcher.NewDNFFetcher(cfg.FetchTimeout())
		if err != nil {
			return err
		}
		crepo, err := fetcher.NewCreaterepoIndexer(cfg.FetchTimeout())
		if err != nil {
			return err
		}
		fetch, index = dnf, crepo
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, afero.NewOsFs(), fetch, index)
	a.ShowProgress = !syncNoProgress && !cfg.DryRun

	if err := a.Run(ctx, catalogReader); err != nil {
		log.Errorf("mirror run failed: %v", err)
		return err
	}
	return nil
}
