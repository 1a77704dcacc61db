// Package inventory builds the per-repository view of artifacts already on
// disk. The view is taken once per run and treated as read-only afterwards;
// artifacts downloaded during the same run are observed on the next run.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sassoftware/go-rpmutils"
	"github.com/spf13/afero"

	"github.com/edge-curation/rpm-mirror/internal/rpm"
	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

// Artifact is one on-disk package: its identity plus the file path it was
// parsed from.
type Artifact struct {
	rpm.Identity
	Path string
}

// Inventory is the lookup from name+arch to the installed artifact for one
// repository.
type Inventory struct {
	Repo      string
	Malformed int // filenames that did not parse

	byKey map[string]Artifact
}

// Lookup finds the artifact with the given name and architecture.
func (inv *Inventory) Lookup(name, arch string) (Artifact, bool) {
	a, ok := inv.byKey[name+"."+arch]
	return a, ok
}

// Len returns the number of artifacts found.
func (inv *Inventory) Len() int { return len(inv.byKey) }

// Scanner reads repository artifact directories. With deep scan enabled the
// RPM lead and header of each artifact are read to recover the epoch, which
// the filename convention cannot carry.
type Scanner struct {
	fs       afero.Fs
	deepScan bool
}

// NewScanner builds a scanner over fs. Pass afero.NewOsFs() in production.
func NewScanner(fs afero.Fs, deepScan bool) *Scanner {
	return &Scanner{fs: fs, deepScan: deepScan}
}

// Scan reads the artifact directory of one repository. A missing directory
// yields an empty inventory (nothing mirrored yet), not an error.
func (s *Scanner) Scan(repo, dir string) (*Inventory, error) {
	log := logger.Logger()
	inv := &Inventory{Repo: repo, byKey: make(map[string]Artifact)}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("repository %s: artifact directory %s does not exist yet", repo, dir)
			return inv, nil
		}
		return nil, fmt.Errorf("scanning repository %s: %w", repo, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".rpm" {
			continue
		}

		id, err := rpm.ParseFilename(name)
		if err != nil {
			log.Warnf("repository %s: skipping %s: %v", repo, name, err)
			inv.Malformed++
			continue
		}
		id.Repo = repo

		path := filepath.Join(dir, name)
		if s.deepScan {
			if epoch, err := s.readEpoch(path); err != nil {
				log.Debugf("repository %s: header read failed for %s: %v", repo, name, err)
			} else if epoch != 0 {
				id.EVR = rpm.NewEVR(epoch, id.Version, id.Release)
			}
		}

		inv.byKey[id.Key()] = Artifact{Identity: id, Path: path}
	}

	log.Debugf("repository %s: %d artifacts, %d malformed filenames", repo, inv.Len(), inv.Malformed)
	return inv, nil
}

// readEpoch pulls the epoch out of the RPM header.
func (s *Scanner) readEpoch(path string) (int, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	hdr, err := rpmutils.ReadHeader(f)
	if err != nil {
		return 0, fmt.Errorf("reading rpm header: %w", err)
	}
	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return 0, fmt.Errorf("reading nevra from header: %w", err)
	}
	if nevra.Epoch == "" || nevra.Epoch == "0" {
		return 0, nil
	}
	epoch, err := strconv.Atoi(nevra.Epoch)
	if err != nil || epoch < 0 {
		return 0, fmt.Errorf("bad epoch %q in header", nevra.Epoch)
	}
	return epoch, nil
}
