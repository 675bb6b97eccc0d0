package leaderboard

import (
	"context"
	"sync"
)

// Refetcher is a mounted query that can be told to refetch.
type Refetcher interface {
	Domain() string
	Key() string
	Refetch(ctx context.Context)
}

// Registry tracks mounted queries so refresh notifications can reach them.
type Registry struct {
	mu      sync.RWMutex
	queries map[Refetcher]struct{}
}

func NewRegistry() *Registry {
	return &Registry{queries: make(map[Refetcher]struct{})}
}

// Add registers q and returns a function that removes it.
func (r *Registry) Add(q Refetcher) (remove func()) {
	r.mu.Lock()
	r.queries[q] = struct{}{}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.queries, q)
		r.mu.Unlock()
	}
}

// Refetch forces a refetch on every query of domain whose key matches.
// An empty key matches every query of the domain. It returns how many
// queries were refetched.
func (r *Registry) Refetch(ctx context.Context, domain, key string) int {
	r.mu.RLock()
	var matched []Refetcher
	for q := range r.queries {
		if q.Domain() == domain && (key == "" || q.Key() == key) {
			matched = append(matched, q)
		}
	}
	r.mu.RUnlock()

	for _, q := range matched {
		q.Refetch(ctx)
	}
	return len(matched)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queries)
}
