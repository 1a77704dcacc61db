// Package fetcher wraps the external tools that move bytes: dnf for package
// retrieval and createrepo_c for index regeneration. The engine only decides
// what to ask them and how to react; the transfer itself is theirs.
package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edge-curation/rpm-mirror/internal/rpm"
	"github.com/edge-curation/rpm-mirror/internal/utils/shell"
)

// DNFFetcher retrieves packages with "dnf download". Exit status 0 means the
// artifacts are present under the destination directory; anything else,
// timeouts included, is a failure for the caller's fallback logic.
type DNFFetcher struct {
	timeout time.Duration
}

// NewDNFFetcher builds a fetcher with the per-call timeout. It fails fast
// when the dnf binary is not available, so a run never starts per-package
// work against a missing collaborator.
func NewDNFFetcher(timeout time.Duration) (*DNFFetcher, error) {
	if !shell.IsCommandExist("dnf") {
		return nil, fmt.Errorf("dnf is not available on this host")
	}
	return &DNFFetcher{timeout: timeout}, nil
}

// Fetch downloads the given packages from upstream into destDir.
func (f *DNFFetcher) Fetch(ctx context.Context, upstream, destDir string, pkgs []rpm.Identity) error {
	if len(pkgs) == 0 {
		return nil
	}

	specs := make([]string, len(pkgs))
	for i, p := range pkgs {
		specs[i] = nevraSpec(p)
	}

	cmdStr := fmt.Sprintf("dnf download --destdir %s --disablerepo='*' --enablerepo=%s %s",
		destDir, upstream, strings.Join(specs, " "))

	if _, err := shell.ExecWithTimeout(ctx, cmdStr, f.timeout); err != nil {
		return fmt.Errorf("dnf download of %d packages from %s: %w", len(pkgs), upstream, err)
	}
	return nil
}

// nevraSpec renders a package as the NEVRA spec dnf expects. The epoch is
// included only when nonzero.
func nevraSpec(p rpm.Identity) string {
	if p.Epoch > 0 {
		return fmt.Sprintf("%s-%d:%s-%s.%s", p.Name, p.Epoch, p.Version, p.Release, p.Arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", p.Name, p.Version, p.Release, p.Arch)
}
