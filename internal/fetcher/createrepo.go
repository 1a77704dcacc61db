package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/edge-curation/rpm-mirror/internal/utils/shell"
)

// CreaterepoIndexer regenerates repository index metadata by shelling out to
// createrepo_c. Fire and forget per repository; the caller surfaces failures
// as diagnostics.
type CreaterepoIndexer struct {
	timeout time.Duration
}

// NewCreaterepoIndexer builds an indexer with the per-call timeout.
func NewCreaterepoIndexer(timeout time.Duration) (*CreaterepoIndexer, error) {
	if !shell.IsCommandExist("createrepo_c") {
		return nil, fmt.Errorf("createrepo_c is not available on this host")
	}
	return &CreaterepoIndexer{timeout: timeout}, nil
}

// Regenerate rebuilds the repodata under repoPath. --update reuses checksums
// of unmodified packages, which keeps the call cheap on large repositories.
func (c *CreaterepoIndexer) Regenerate(ctx context.Context, repoPath string) error {
	cmdStr := fmt.Sprintf("createrepo_c --update %s", repoPath)
	if _, err := shell.ExecWithTimeout(ctx, cmdStr, c.timeout); err != nil {
		return fmt.Errorf("regenerating repodata in %s: %w", repoPath, err)
	}
	return nil
}
