// Package app wires the run together: catalog in, inventories scanned,
// entries classified, queues downloaded, metadata updated, summary out.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"

	"github.com/edge-curation/rpm-mirror/internal/catalog"
	"github.com/edge-curation/rpm-mirror/internal/config"
	"github.com/edge-curation/rpm-mirror/internal/inventory"
	"github.com/edge-curation/rpm-mirror/internal/mirror"
	"github.com/edge-curation/rpm-mirror/internal/repodata"
	"github.com/edge-curation/rpm-mirror/internal/rpm"
	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

// ErrPartialFailure signals that the run completed but some packages failed
// retrieval after exhausting fallback; the process exits nonzero on it.
var ErrPartialFailure = errors.New("some packages failed retrieval")

// App holds the collaborators of one mirror run.
type App struct {
	cfg     *config.Config
	fs      afero.Fs
	fetcher mirror.Fetcher
	indexer mirror.Indexer

	// ShowProgress attaches a progress bar to the download phase.
	ShowProgress bool
}

// New builds an App. fetcher and indexer are the external collaborators;
// tests inject fakes.
func New(cfg *config.Config, fs afero.Fs, fetcher mirror.Fetcher, indexer mirror.Indexer) *App {
	return &App{cfg: cfg, fs: fs, fetcher: fetcher, indexer: indexer}
}

// Run executes one mirror pass over the catalog read from r.
func (a *App) Run(ctx context.Context, r io.Reader) error {
	log := logger.Logger()
	runID := uuid.NewString()
	log.Infof("starting mirror run %s", runID)

	cat, err := catalog.Parse(r)
	if err != nil {
		return err
	}
	log.Infof("catalog: %d entries, %d skipped", len(cat.Entries), cat.Skipped)

	repoByName := make(map[string]config.Repository, len(a.cfg.Repositories))
	for _, repo := range a.cfg.Repositories {
		repoByName[repo.Name] = repo
	}

	entries, unknown := filterKnownRepos(cat.Entries, repoByName)
	if unknown > 0 {
		log.Warnf("skipping %d catalog entries for unconfigured repositories", unknown)
	}

	// The inventory view is taken once here and treated as read-only for
	// the rest of the run; artifacts downloaded below are observed on the
	// next run.
	scanner := inventory.NewScanner(a.fs, a.cfg.DeepScan)
	inventories := make(map[string]*inventory.Inventory, len(a.cfg.Repositories))
	for _, repo := range a.cfg.Repositories {
		inv, err := scanner.Scan(repo.Name, a.cfg.RepoPath(repo))
		if err != nil {
			return fmt.Errorf("scanning local inventory: %w", err)
		}
		inventories[repo.Name] = inv
	}

	counters := mirror.NewCounterSet()
	changed := mirror.NewChangedSet()

	classifier := mirror.NewClassifier(a.cfg.ManualSet(), counters, a.cfg.Force)
	classification := classifier.Classify(entries, inventories)
	log.Infof("classified %d entries, %d queued for download", classification.Processed, classification.Queued())

	if a.cfg.DryRun {
		for _, repo := range a.cfg.Repositories {
			if n := len(classification.QueuesByRepo[repo.Name]); n > 0 {
				log.Infof("dry run: repository %s: would download %d packages", repo.Name, n)
			}
		}
		a.logCounters(counters)
		log.Infof("dry run: no downloads, removals or metadata updates performed")
		return nil
	}

	jobs := make([]mirror.RepoJob, 0, len(a.cfg.Repositories))
	for _, repo := range a.cfg.Repositories {
		jobs = append(jobs, mirror.RepoJob{
			Repo:     repo.Name,
			Upstream: a.cfg.UpstreamID(repo),
			Dir:      a.cfg.RepoPath(repo),
			Queue:    classification.QueuesByRepo[repo.Name],
		})
	}

	downloader := mirror.NewDownloader(a.fetcher, a.fs, counters, changed, a.cfg.MaxBatchSize, a.cfg.Force)
	if a.ShowProgress && classification.Queued() > 0 {
		bar := progressbar.NewOptions(classification.Queued(),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
		downloader.Progress = func(delta int) { _ = bar.Add(delta) }
		defer func() { _ = bar.Finish() }()
	}

	result := downloader.Download(ctx, jobs, a.cfg.MaxConcurrent)

	targets := make([]mirror.MetadataTarget, 0, len(a.cfg.Repositories))
	for _, repo := range a.cfg.Repositories {
		targets = append(targets, mirror.MetadataTarget{Repo: repo.Name, Path: a.cfg.RepoPath(repo)})
	}
	mirror.NewMetadataUpdater(a.indexer).Update(ctx, changed, targets, a.cfg.FullMetadataUpdate)

	for _, name := range changed.Names() {
		stat, err := repodata.Read(a.fs, a.cfg.RepoPath(repoByName[name]))
		if err != nil {
			log.Debugf("repository %s: repodata not readable: %v", name, err)
			continue
		}
		log.Infof("repository %s: index revision %s, %d packages", name, stat.Revision, stat.Packages)
	}

	a.logCounters(counters)
	succeeded, attempted := result.Totals()
	log.Infof("run %s finished: %d/%d packages retrieved, %d repositories changed",
		runID, succeeded, attempted, changed.Len())

	if failed := result.FailedCount(); failed > 0 {
		return fmt.Errorf("%d of %d packages: %w", failed, attempted, ErrPartialFailure)
	}
	return nil
}

func (a *App) logCounters(counters *mirror.CounterSet) {
	log := logger.Logger()
	snap := counters.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := snap[name]
		log.Infof("repository %s: new=%d update=%d exists=%d changed=%d",
			name, c.New, c.Update, c.Exists, c.Changed)
	}
}

func filterKnownRepos(entries []rpm.Identity, known map[string]config.Repository) ([]rpm.Identity, int) {
	out := make([]rpm.Identity, 0, len(entries))
	unknown := 0
	for _, e := range entries {
		if _, ok := known[e.Repo]; !ok {
			unknown++
			continue
		}
		out = append(out, e)
	}
	return out, unknown
}
