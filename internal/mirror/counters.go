// Package mirror contains the retrieval-decision engine: classification of
// catalog entries against the local inventory, the adaptive batch downloader,
// the changed-repository tracking and the selective metadata update.
package mirror

import "sync"

// Disposition is the outcome of classifying one catalog entry.
type Disposition int

const (
	// DispositionNew means no local artifact with matching name+arch exists.
	DispositionNew Disposition = iota
	// DispositionUpdate means a local artifact exists and the catalog
	// version is strictly newer.
	DispositionUpdate
	// DispositionExists means a local artifact exists and is equal or newer;
	// the engine never downloads a same-or-newer artifact.
	DispositionExists
)

func (d Disposition) String() string {
	switch d {
	case DispositionNew:
		return "NEW"
	case DispositionUpdate:
		return "UPDATE"
	case DispositionExists:
		return "EXISTS"
	default:
		return "UNKNOWN"
	}
}

// Counts is a read-only snapshot of one repository's counters.
type Counts struct {
	New     int
	Update  int
	Exists  int
	Changed int
}

// RepoCounters accumulates per-repository counts for one run. Increments and
// decrements are clamped at the single point of mutation so no counter is
// ever observable below zero, however workers interleave.
type RepoCounters struct {
	mu     sync.Mutex
	counts Counts
}

func (c *RepoCounters) add(field *int, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*field += delta
	if *field < 0 {
		*field = 0
	}
}

func (c *RepoCounters) AddNew(delta int)     { c.add(&c.counts.New, delta) }
func (c *RepoCounters) AddUpdate(delta int)  { c.add(&c.counts.Update, delta) }
func (c *RepoCounters) AddExists(delta int)  { c.add(&c.counts.Exists, delta) }
func (c *RepoCounters) AddChanged(delta int) { c.add(&c.counts.Changed, delta) }

// Snapshot returns the current counts.
func (c *RepoCounters) Snapshot() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}

// CounterSet holds the counters of every repository touched in a run.
type CounterSet struct {
	mu     sync.Mutex
	byRepo map[string]*RepoCounters
}

// NewCounterSet builds an empty counter set.
func NewCounterSet() *CounterSet {
	return &CounterSet{byRepo: make(map[string]*RepoCounters)}
}

// Repo returns the counters for a repository, creating them on first use.
func (s *CounterSet) Repo(name string) *RepoCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byRepo[name]
	if !ok {
		c = &RepoCounters{}
		s.byRepo[name] = c
	}
	return c
}

// Snapshot returns the counts of every touched repository.
func (s *CounterSet) Snapshot() map[string]Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counts, len(s.byRepo))
	for name, c := range s.byRepo {
		out[name] = c.Snapshot()
	}
	return out
}
