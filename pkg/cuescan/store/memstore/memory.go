package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/lexcue/cuescan/pkg/cuescan/census"
	"github.com/lexcue/cuescan/pkg/cuescan/internalerr"
	"github.com/lexcue/cuescan/pkg/cuescan/report"
	"github.com/lexcue/cuescan/pkg/cuescan/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-shot CLI runs.
type Store struct {
	mu   sync.RWMutex
	runs map[string]entry
}

type entry struct {
	run      store.Run
	years    []census.YearCount
	clusters []census.Cluster
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs: make(map[string]entry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a finished census pass, keyed by run ID.
func (s *Store) SaveRun(ctx context.Context, meta report.RunMeta, snap census.Snapshot) error {
	if meta.ID == "" {
		return internalerr.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[meta.ID] = entry{
		run:      store.RunFromSnapshot(meta, snap),
		years:    append([]census.YearCount(nil), snap.YearTable()...),
		clusters: copyClusters(snap.TopClusters),
	}
	return nil
}

// GetRun returns a stored run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.runs[id]; ok {
		return e.run, nil
	}
	return store.Run{}, internalerr.ErrNotFound
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]store.Run, 0, len(s.runs))
	for _, e := range s.runs {
		runs = append(runs, e.run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Meta.ID > runs[j].Meta.ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// YearCounts returns a run's per-year census table.
func (s *Store) YearCounts(ctx context.Context, runID string) ([]census.YearCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.runs[runID]
	if !ok {
		return nil, internalerr.ErrNotFound
	}
	return append([]census.YearCount(nil), e.years...), nil
}

// TopClusters returns up to k of a run's duplicate clusters, largest first.
func (s *Store) TopClusters(ctx context.Context, runID string, k int) ([]census.Cluster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.runs[runID]
	if !ok {
		return nil, internalerr.ErrNotFound
	}
	clusters := copyClusters(e.clusters)
	if k > 0 && len(clusters) > k {
		clusters = clusters[:k]
	}
	return clusters, nil
}

func copyClusters(in []census.Cluster) []census.Cluster {
	out := make([]census.Cluster, len(in))
	for i, c := range in {
		c.Examples = append([]census.Example(nil), c.Examples...)
		out[i] = c
	}
	return out
}
