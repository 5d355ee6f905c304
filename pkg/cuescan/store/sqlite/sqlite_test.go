package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexcue/cuescan/pkg/cuescan/census"
	"github.com/lexcue/cuescan/pkg/cuescan/internalerr"
	"github.com/lexcue/cuescan/pkg/cuescan/record"
	"github.com/lexcue/cuescan/pkg/cuescan/report"
	"github.com/lexcue/cuescan/pkg/cuescan/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "census.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot(t *testing.T) census.Snapshot {
	t.Helper()
	agg := census.NewAggregator(census.Options{})
	rows := []record.Record{
		{"from_domain": "a.com", "subject": "one", "body": "first message body text", "date": "2010-01-01"},
		{"from_domain": "a.com", "subject": "one", "body": "first message body text", "date": "2012-01-01"},
		{"from_domain": "b.com", "subject": "two", "body": "second message body text", "date": "2012-01-01"},
	}
	for _, r := range rows {
		agg.Process(r, "corpus.csv")
	}
	return agg.Snapshot()
}

func TestSQLiteSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := testSnapshot(t)

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	meta := report.RunMeta{ID: "01RUN", Input: "corpus/", StartedAt: started}
	if err := s.SaveRun(ctx, meta, snap); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	run, err := s.GetRun(ctx, "01RUN")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Meta.ID != "01RUN" || run.Meta.Input != "corpus/" {
		t.Errorf("run meta = %+v", run.Meta)
	}
	if !run.Meta.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", run.Meta.StartedAt, started)
	}
	if run.TotalRows != 3 || run.UniqueEmails != 2 || run.EstimatedDuplicates != 1 {
		t.Errorf("run counts = %d/%d/%d, want 3/2/1",
			run.TotalRows, run.UniqueEmails, run.EstimatedDuplicates)
	}
	if run.Audit != snap.Audit {
		t.Errorf("audit round-trip = %+v, want %+v", run.Audit, snap.Audit)
	}
}

func TestSQLiteSaveRunRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveRun(context.Background(), report.RunMeta{}, census.Snapshot{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("SaveRun with empty ID = %v, want ErrInvalidInput", err)
	}
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetRun(missing) = %v, want ErrNotFound", err)
	}
}

func TestSQLiteListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := testSnapshot(t)

	for _, id := range []string{"01A", "01C", "01B"} {
		meta := report.RunMeta{ID: id, Input: "corpus/", StartedAt: time.Now()}
		if err := s.SaveRun(ctx, meta, snap); err != nil {
			t.Fatalf("SaveRun(%s): %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns returned %d runs, want 3", len(runs))
	}
	for i, want := range []string{"01C", "01B", "01A"} {
		if runs[i].Meta.ID != want {
			t.Errorf("runs[%d].ID = %q, want %q", i, runs[i].Meta.ID, want)
		}
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns(limit=2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited = %d runs, want 2", len(limited))
	}
}

func TestSQLiteYearCountsAndClusters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := testSnapshot(t)

	meta := report.RunMeta{ID: "01RUN", Input: "corpus/", StartedAt: time.Now()}
	if err := s.SaveRun(ctx, meta, snap); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	years, err := s.YearCounts(ctx, "01RUN")
	if err != nil {
		t.Fatalf("YearCounts: %v", err)
	}
	if len(years) != 2 || years[0].Year != "2010" || years[1].Year != "2012" {
		t.Errorf("years = %+v, want 2010 then 2012", years)
	}
	if years[1].EmailLikeRows != 2 || years[1].UniqueEmails != 1 {
		t.Errorf("2012 row = %+v, want 2 raw / 1 unique", years[1])
	}

	clusters, err := s.TopClusters(ctx, "01RUN", 10)
	if err != nil {
		t.Fatalf("TopClusters: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("clusters = %d entries, want 1", len(clusters))
	}
	c := clusters[0]
	if c.Count != 2 || c.Signature.FromDomain != "a.com" || c.EarliestYear != "2010" {
		t.Errorf("cluster = %+v", c)
	}
	if len(c.Examples) != 2 || c.Examples[0].Source != "corpus.csv" {
		t.Errorf("cluster examples = %+v, want 2 from corpus.csv", c.Examples)
	}
}

func TestSQLiteSaveRunOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := testSnapshot(t)

	meta := report.RunMeta{ID: "01RUN", Input: "first/", StartedAt: time.Now()}
	if err := s.SaveRun(ctx, meta, snap); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	meta.Input = "second/"
	if err := s.SaveRun(ctx, meta, snap); err != nil {
		t.Fatalf("SaveRun (replace): %v", err)
	}

	run, err := s.GetRun(ctx, "01RUN")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Meta.Input != "second/" {
		t.Errorf("Input = %q, want %q after replace", run.Meta.Input, "second/")
	}
	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("ListRuns = %d runs, want 1 after replace", len(runs))
	}
}
