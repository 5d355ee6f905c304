// Package store persists finished census runs so corpus passes can be
// compared over time. Backends: memstore for tests and one-shot runs,
// sqlite for durable history.
package store

import (
	"context"

	"github.com/lexcue/cuescan/pkg/cuescan/census"
	"github.com/lexcue/cuescan/pkg/cuescan/report"
)

// Store is the interface for persisting and querying census runs.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, meta report.RunMeta, snap census.Snapshot) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Per-run detail
	YearCounts(ctx context.Context, runID string) ([]census.YearCount, error)
	TopClusters(ctx context.Context, runID string, k int) ([]census.Cluster, error)
}

// Run is a stored census run's summary row.
type Run struct {
	Meta                 report.RunMeta
	TotalRows            int
	EmailLikeRows        int
	UniqueEmails         int
	EstimatedDuplicates  int
	DuplicateRatePercent float64
	Audit                census.YearAudit
}

// RunFromSnapshot builds the summary row persisted for a finished pass.
func RunFromSnapshot(meta report.RunMeta, snap census.Snapshot) Run {
	return Run{
		Meta:                 meta,
		TotalRows:            snap.TotalRows,
		EmailLikeRows:        snap.EmailLikeRows,
		UniqueEmails:         snap.UniqueEmails,
		EstimatedDuplicates:  snap.EstimatedDuplicates,
		DuplicateRatePercent: snap.DuplicateRatePercent,
		Audit:                snap.Audit,
	}
}
