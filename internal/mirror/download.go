package mirror

import (
	"context"
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/edge-curation/rpm-mirror/internal/rpm"
	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

// Fetcher is the external retrieval collaborator. A nil error means the call
// succeeded and the artifacts are present under destDir; any error, timeouts
// included, drives the fallback state machine.
type Fetcher interface {
	Fetch(ctx context.Context, upstream, destDir string, pkgs []rpm.Identity) error
}

// RepoJob is one repository's download work.
type RepoJob struct {
	Repo     string
	Upstream string
	Dir      string
	Queue    []QueueEntry
}

// RepoResult reports one repository's download outcome.
type RepoResult struct {
	Repo      string
	Attempted int
	Succeeded int
	Failed    []rpm.Identity
}

// Result aggregates download outcomes across repositories.
type Result struct {
	mu     sync.Mutex
	ByRepo map[string]RepoResult
}

func newResult() *Result {
	return &Result{ByRepo: make(map[string]RepoResult)}
}

func (r *Result) add(rr RepoResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ByRepo[rr.Repo] = rr
}

// Totals returns overall succeeded and attempted counts.
func (r *Result) Totals() (succeeded, attempted int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rr := range r.ByRepo {
		succeeded += rr.Succeeded
		attempted += rr.Attempted
	}
	return succeeded, attempted
}

// FailedCount returns the number of permanently failed packages.
func (r *Result) FailedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rr := range r.ByRepo {
		n += len(rr.Failed)
	}
	return n
}

// Downloader retrieves queued packages per repository through the external
// retrieval tool, degrading gracefully when the tool rejects large batches:
// the batch size is halved on failure, a stalled batch is retried one package
// at a time, and the batch size regrows once the stall clears.
type Downloader struct {
	fetcher  Fetcher
	fs       afero.Fs
	counters *CounterSet
	changed  *ChangedSet

	maxBatch int
	force    bool

	// Progress, when set, is called with the number of packages newly
	// finished (succeeded or permanently failed) after each attempt.
	Progress func(delta int)
}

// NewDownloader builds a downloader sharing the run's counters and changed
// set. maxBatch is the configured maximum retrieval batch size.
func NewDownloader(fetcher Fetcher, fs afero.Fs, counters *CounterSet, changed *ChangedSet, maxBatch int, force bool) *Downloader {
	if maxBatch < 1 {
		maxBatch = 1
	}
	return &Downloader{
		fetcher:  fetcher,
		fs:       fs,
		counters: counters,
		changed:  changed,
		maxBatch: maxBatch,
		force:    force,
	}
}

// Download processes every repository's queue using a bounded pool of
// workers. Within one repository attempts are strictly sequential; across
// repositories no ordering is guaranteed.
func (d *Downloader) Download(ctx context.Context, jobs []RepoJob, workers int) *Result {
	if workers < 1 {
		workers = 1
	}

	result := newResult()
	jobCh := make(chan RepoJob, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				result.add(d.downloadRepo(ctx, job))
			}
		}()
	}

	for _, job := range jobs {
		if len(job.Queue) == 0 {
			// Empty queue: no retrieval call is ever issued.
			continue
		}
		jobCh <- job
	}
	close(jobCh)

	wg.Wait()
	return result
}

// downloadRepo drains one repository's queue through the fallback state
// machine. Batch-size decisions depend on the immediately preceding attempt,
// so everything here is sequential.
func (d *Downloader) downloadRepo(ctx context.Context, job RepoJob) RepoResult {
	log := logger.Logger()
	res := RepoResult{Repo: job.Repo, Attempted: len(job.Queue)}

	remaining := job.Queue
	batchSize := minInt(d.maxBatch, len(remaining))
	inFallback := false

	for len(remaining) > 0 {
		n := minInt(batchSize, len(remaining))

		if inFallback && n == 1 {
			// INDIVIDUAL: the stalled entries are retried one at a time.
			// Each failure is permanent for that package but never aborts
			// the rest; the first success clears the stall.
			log.Warnf("repository %s: switching to individual fallback", job.Repo)
			cleared := false
			for len(remaining) > 0 && !cleared {
				entry := remaining[0]
				if err := d.fetchBatch(ctx, job, remaining[:1]); err != nil {
					res.Failed = append(res.Failed, entry.Identity)
					log.Errorf("repository %s: giving up on %s after fallback: %v",
						job.Repo, entry.Identity.String(), err)
				} else {
					res.Succeeded++
					d.markChanged(job.Repo, 1)
					log.Infof("repository %s: fallback batch of 1 succeeded", job.Repo)
					cleared = true
				}
				remaining = remaining[1:]
				d.reportProgress(1)
			}
			// REGROWING: a transient stall must not degrade throughput for
			// the rest of the run, so the batch size resets toward the
			// configured maximum instead of staying collapsed.
			inFallback = false
			if len(remaining) > 0 {
				batchSize = minInt(d.maxBatch, len(remaining))
				log.Infof("repository %s: regrowing batch size to %d", job.Repo, batchSize)
			}
			continue
		}

		err := d.fetchBatch(ctx, job, remaining[:n])
		if err == nil {
			res.Succeeded += n
			remaining = remaining[n:]
			d.markChanged(job.Repo, n)
			d.reportProgress(n)
			if inFallback {
				log.Infof("repository %s: fallback batch of %d succeeded", job.Repo, n)
				inFallback = false
				if len(remaining) > 0 {
					batchSize = minInt(d.maxBatch, len(remaining))
					log.Infof("repository %s: regrowing batch size to %d", job.Repo, batchSize)
				}
			}
			continue
		}

		if !inFallback {
			log.Warnf("repository %s: batch of %d failed, entering fallback: %v", job.Repo, n, err)
			inFallback = true
		}
		// Halve and retry the same queue head; once the size is driven to 1
		// the next iteration switches to INDIVIDUAL.
		batchSize = maxInt(1, n/2)
	}

	log.Infof("repository %s: %d/%d packages retrieved", job.Repo, res.Succeeded, res.Attempted)
	return res
}

// fetchBatch issues one retrieval call. Under forced mode the on-disk
// artifacts of the batch are removed first; a pre-removal marks the
// repository changed whatever the retrieval outcome.
func (d *Downloader) fetchBatch(ctx context.Context, job RepoJob, batch []QueueEntry) error {
	log := logger.Logger()

	if d.force {
		for _, entry := range batch {
			if entry.LocalPath == "" {
				continue
			}
			if err := d.fs.Remove(entry.LocalPath); err != nil {
				if !os.IsNotExist(err) {
					log.Warnf("repository %s: pre-removal of %s failed: %v", job.Repo, entry.LocalPath, err)
				}
				continue
			}
			log.Debugf("repository %s: pre-removed %s", job.Repo, entry.LocalPath)
			d.markChanged(job.Repo, 1)
		}
	}

	ids := make([]rpm.Identity, len(batch))
	for i, entry := range batch {
		ids[i] = entry.Identity
	}
	return d.fetcher.Fetch(ctx, job.Upstream, job.Dir, ids)
}

func (d *Downloader) markChanged(repo string, delta int) {
	d.changed.Add(repo)
	d.counters.Repo(repo).AddChanged(delta)
}

func (d *Downloader) reportProgress(delta int) {
	if d.Progress != nil {
		d.Progress(delta)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
