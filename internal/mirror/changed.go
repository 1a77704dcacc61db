package mirror

import (
	"sort"
	"sync"
)

// ChangedSet tracks repositories whose on-disk contents were modified this
// run, either by a successful retrieval or by a forced pre-removal. It scopes
// metadata regeneration and is consumed once, at metadata-update time. Safe
// for concurrent use by multiple repository workers.
type ChangedSet struct {
	mu    sync.Mutex
	repos map[string]bool
}

// NewChangedSet builds an empty set.
func NewChangedSet() *ChangedSet {
	return &ChangedSet{repos: make(map[string]bool)}
}

// Add marks a repository as changed. It reports whether the repository was
// newly added.
func (s *ChangedSet) Add(repo string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repos[repo] {
		return false
	}
	s.repos[repo] = true
	return true
}

// Contains reports whether a repository is marked changed.
func (s *ChangedSet) Contains(repo string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos[repo]
}

// Len returns the number of changed repositories.
func (s *ChangedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.repos)
}

// Empty reports whether no repository changed.
func (s *ChangedSet) Empty() bool { return s.Len() == 0 }

// Names returns the changed repositories in sorted order.
func (s *ChangedSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.repos))
	for name := range s.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
