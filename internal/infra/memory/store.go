package memory

import (
	"sync"
)

// Store is an in-memory implementation of every app repository. It backs the service when no
// database is configured and serves as the fake in tests.
type Store struct {
	mu sync.RWMutex

	categories map[string]categoryRow
	questions  map[string]questionRow
	sessions   map[string]sessionRow
	answers    []answerRow
	badges     map[string]badgeRow
	progress   map[progressKey]progressRow
	users      map[string]userRow
	reports    map[string]reportRow
	points     map[string]*pointsRow
	seq        int
}

func NewStore() *Store {
	return &Store{
		categories: make(map[string]categoryRow),
		questions:  make(map[string]questionRow),
		sessions:   make(map[string]sessionRow),
		badges:     make(map[string]badgeRow),
		progress:   make(map[progressKey]progressRow),
		users:      make(map[string]userRow),
		reports:    make(map[string]reportRow),
		points:     make(map[string]*pointsRow),
	}
}

// next returns a monotonically increasing sequence used to keep insertion order.
func (s *Store) next() int {
	s.seq++
	return s.seq
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
