package mirror

import (
	"github.com/edge-curation/rpm-mirror/internal/inventory"
	"github.com/edge-curation/rpm-mirror/internal/rpm"
	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

// QueueEntry is one package to retrieve, carrying its disposition and, when a
// local artifact exists, the path to it (needed for forced pre-removal).
type QueueEntry struct {
	rpm.Identity
	Disposition Disposition
	LocalPath   string
}

// Classification is the outcome of one classification pass: per-repository
// download queues in catalog order plus the processed-entry count.
type Classification struct {
	// QueuesByRepo holds NEW and UPDATE entries per repository, preserving
	// catalog order within each repository.
	QueuesByRepo map[string][]QueueEntry
	// Processed counts every catalog entry, whatever its outcome.
	Processed int
}

// Queued returns the total number of queued entries across repositories.
func (c *Classification) Queued() int {
	n := 0
	for _, q := range c.QueuesByRepo {
		n += len(q)
	}
	return n
}

// Classifier turns catalog entries into dispositions. Repositories in the
// manual set are operator-curated: their NEW/UPDATE candidates are reported
// but never queued, and their counters stay untouched.
type Classifier struct {
	manual   map[string]bool
	counters *CounterSet
	// redownloadExisting queues EXISTS entries as well, so a forced run can
	// replace artifacts that are already current.
	redownloadExisting bool
}

// NewClassifier builds a classifier sharing the run's counter set.
func NewClassifier(manual map[string]bool, counters *CounterSet, redownloadExisting bool) *Classifier {
	return &Classifier{
		manual:             manual,
		counters:           counters,
		redownloadExisting: redownloadExisting,
	}
}

// Classify processes every catalog entry independently against the local
// inventory of its owning repository. A repository with no scanned inventory
// is treated as empty, so everything in it classifies NEW.
func (cl *Classifier) Classify(entries []rpm.Identity, inventories map[string]*inventory.Inventory) *Classification {
	log := logger.Logger()
	result := &Classification{QueuesByRepo: make(map[string][]QueueEntry)}

	for _, entry := range entries {
		result.Processed++
		counters := cl.counters.Repo(entry.Repo)

		var local inventory.Artifact
		found := false
		if inv := inventories[entry.Repo]; inv != nil {
			local, found = inv.Lookup(entry.Name, entry.Arch)
		}

		var disposition Disposition
		switch {
		case !found:
			disposition = DispositionNew
		case entry.IsNewer(local.EVR):
			disposition = DispositionUpdate
		default:
			disposition = DispositionExists
		}

		if disposition == DispositionExists {
			// EXISTS is recorded normally everywhere, manual repos included.
			counters.AddExists(1)
			if cl.redownloadExisting && !cl.manual[entry.Repo] {
				result.QueuesByRepo[entry.Repo] = append(result.QueuesByRepo[entry.Repo], QueueEntry{
					Identity:    entry,
					Disposition: DispositionExists,
					LocalPath:   local.Path,
				})
			}
			continue
		}

		if cl.manual[entry.Repo] {
			// Revert the tentative disposition: increment then the matching
			// decrement, both clamped, leaving the counter untouched.
			switch disposition {
			case DispositionNew:
				counters.AddNew(1)
				counters.AddNew(-1)
			case DispositionUpdate:
				counters.AddUpdate(1)
				counters.AddUpdate(-1)
			}
			log.Infof("repository %s: %s (%s): manual repository (no download attempted)",
				entry.Repo, entry.String(), disposition)
			continue
		}

		qe := QueueEntry{Identity: entry, Disposition: disposition}
		switch disposition {
		case DispositionNew:
			counters.AddNew(1)
		case DispositionUpdate:
			counters.AddUpdate(1)
			qe.LocalPath = local.Path
		}
		result.QueuesByRepo[entry.Repo] = append(result.QueuesByRepo[entry.Repo], qe)
	}

	return result
}
