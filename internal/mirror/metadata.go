package mirror

import (
	"context"
	"strings"

	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

// Indexer is the external index-regeneration collaborator, invoked per
// repository path. Failures are surfaced as diagnostics only; they never
// roll back downloaded artifacts or abort other repositories.
type Indexer interface {
	Regenerate(ctx context.Context, repoPath string) error
}

// MetadataTarget names a repository and its artifact directory.
type MetadataTarget struct {
	Repo string
	Path string
}

// MetadataUpdater scopes index regeneration to the repositories a run
// actually touched. Regeneration is assumed expensive relative to a no-op,
// so the scoping is purely a cost optimization.
type MetadataUpdater struct {
	indexer Indexer
}

// NewMetadataUpdater builds an updater around the external indexer.
func NewMetadataUpdater(indexer Indexer) *MetadataUpdater {
	return &MetadataUpdater{indexer: indexer}
}

// Update regenerates index metadata. With forceFull set, every target is
// regenerated; otherwise only targets in the changed set are, and targets
// outside the set are neither mentioned nor touched. An empty changed set
// without forceFull regenerates nothing.
func (u *MetadataUpdater) Update(ctx context.Context, changed *ChangedSet, targets []MetadataTarget, forceFull bool) {
	log := logger.Logger()

	if forceFull {
		log.Infof("regenerating metadata for all %d repositories", len(targets))
		for _, t := range targets {
			u.regenerate(ctx, t)
		}
		return
	}

	if changed.Empty() {
		log.Infof("no repositories changed, skipping metadata regeneration")
		return
	}

	names := changed.Names()
	log.Infof("updating metadata for %d changed repositories: %s", len(names), strings.Join(names, ", "))
	for _, t := range targets {
		if !changed.Contains(t.Repo) {
			continue
		}
		u.regenerate(ctx, t)
	}
}

func (u *MetadataUpdater) regenerate(ctx context.Context, t MetadataTarget) {
	log := logger.Logger()
	log.Infof("regenerating metadata for repository %s", t.Repo)
	if err := u.indexer.Regenerate(ctx, t.Path); err != nil {
		log.Errorf("metadata regeneration failed for repository %s: %v", t.Repo, err)
	}
}
