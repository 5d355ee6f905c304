// cue-census deduplicates a CSV phishing corpus into a yearly census of
// unique messages: per-year raw vs unique tallies, top duplicate
// clusters, a sample of unique signatures, and audited year resolution.
// Optionally persists the run to SQLite for cross-run history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/lexcue/cuescan/internal/corpus"
	"github.com/lexcue/cuescan/pkg/cuescan"
	"github.com/lexcue/cuescan/pkg/cuescan/census"
	"github.com/lexcue/cuescan/pkg/cuescan/config"
	"github.com/lexcue/cuescan/pkg/cuescan/record"
	"github.com/lexcue/cuescan/pkg/cuescan/report"
	"github.com/lexcue/cuescan/pkg/cuescan/store"
	"github.com/lexcue/cuescan/pkg/cuescan/store/sqlite"
)

type fileSummary struct {
	File             string `json:"file"`
	RowsTotal        int    `json:"rows_total"`
	EmailLikeRows    int    `json:"email_like_rows"`
	UniqueSignatures int    `json:"unique_signatures_in_file"`
}

func main() {
	var (
		input       = flag.String("input", "", "Directory of CSV files to census (required)")
		out         = flag.String("out", "outputs", "Output base directory")
		settingsCfg = flag.String("settings", "", "Optional settings YAML")
		dbPath      = flag.String("db", "", "Optional SQLite path for run history (overrides settings)")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	loader := config.Loader{SettingsPath: *settingsCfg}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}
	settings := components.Settings

	ctx := context.Background()

	var runStore store.Store
	sqlitePath := settings.SQLitePath
	if *dbPath != "" {
		sqlitePath = *dbPath
	}
	if sqlitePath != "" {
		runStore, err = sqlite.OpenSQLite(ctx, sqlitePath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
	}

	engine := cuescan.New(cuescan.Options{
		Lexicon: components.Lexicon,
		Census:  settings.AggregatorOptions(),
		Store:   runStore,
	})
	defer engine.Close()

	files, err := corpus.Files(*input)
	if err != nil {
		log.Fatalf("list corpus: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no CSV files under %s", *input)
	}

	runDir, err := corpus.RunDir(*out)
	if err != nil {
		log.Fatalf("create run dir: %v", err)
	}
	runMeta := report.NewBuilder().NewRun(*input)
	log.Printf("[cue-census] run %s scanning %s (%d files)", runMeta.ID, *input, len(files))

	var (
		rows      []report.Row
		summaries []fileSummary
	)

	for _, path := range files {
		name := filepath.Base(path)
		summary := fileSummary{File: path}
		seen := make(map[census.Signature]struct{})
		var headerRow []string

		err := corpus.ScanFile(path,
			func(header []string) {
				headerRow = header
			},
			func(values []string, index int) error {
				rec := record.FromRow(headerRow, values)
				summary.RowsTotal++

				text := cuescan.DetectText(rec)
				res := engine.ProcessRecord(rec, name)
				if !res.EmailLike {
					return nil
				}
				summary.EmailLikeRows++
				seen[res.Signature] = struct{}{}

				rows = append(rows, report.NewRow(
					report.SourceRef(name, index),
					rec.Subject(), rec.Get("from"), rec.Get("to"), rec.Get("date"),
					text, res.Totals, res.Extras,
				))
				return nil
			})
		if err != nil {
			log.Printf("scan %s: %v", path, err)
		}

		summary.UniqueSignatures = len(seen)
		summaries = append(summaries, summary)
	}

	snap := engine.Snapshot()

	if err := writeOutputs(runDir, lexHeader(engine), rows, summaries, snap, runMeta, *input, len(files)); err != nil {
		log.Fatalf("write outputs: %v", err)
	}

	if runStore != nil {
		if err := engine.SaveRun(ctx, runMeta); err != nil {
			log.Fatalf("persist run: %v", err)
		}
		log.Printf("run %s persisted to %s", runMeta.ID, sqlitePath)
	}

	printSummary(snap, runDir, len(files))
}

type outputsHeader struct {
	header []string
	record func(report.Row) []string
}

func lexHeader(engine *cuescan.Engine) outputsHeader {
	lex := engine.Lexicon()
	return outputsHeader{
		header: report.CSVHeader(lex),
		record: func(r report.Row) []string { return r.CSVRecord(lex) },
	}
}

func writeOutputs(runDir string, oh outputsHeader, rows []report.Row, summaries []fileSummary,
	snap census.Snapshot, runMeta report.RunMeta, input string, fileCount int) error {

	// Per-year counts
	yearRecords := make([][]string, 0, len(snap.Years))
	for _, yc := range snap.YearTable() {
		yearRecords = append(yearRecords, []string{
			yc.Year,
			fmt.Sprint(yc.EmailLikeRows),
			fmt.Sprint(yc.UniqueEmails),
			fmt.Sprint(yc.EstimatedDuplicates),
		})
	}
	err := corpus.WriteCSV(filepath.Join(runDir, "per_year_counts.csv"),
		[]string{"year", "email_like_rows", "unique_emails", "estimated_duplicates"}, yearRecords)
	if err != nil {
		return err
	}

	// Per-file summary
	fileRecords := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		fileRecords = append(fileRecords, []string{
			s.File, fmt.Sprint(s.RowsTotal), fmt.Sprint(s.EmailLikeRows), fmt.Sprint(s.UniqueSignatures),
		})
	}
	err = corpus.WriteCSV(filepath.Join(runDir, "files_summary.csv"),
		[]string{"file", "rows_total", "email_like_rows", "unique_signatures_in_file"}, fileRecords)
	if err != nil {
		return err
	}

	// Top duplicate clusters
	clusterRecords := make([][]string, 0, len(snap.TopClusters))
	for _, c := range snap.TopClusters {
		clusterRecords = append(clusterRecords, []string{
			fmt.Sprint(c.Count),
			dash(c.Signature.FromDomain),
			dash(c.Signature.Subject),
			c.Signature.HashPrefix(10),
			c.EarliestYear,
			joinExamples(c.Examples, true),
		})
	}
	err = corpus.WriteCSV(filepath.Join(runDir, "duplicates_top.csv"),
		[]string{"count", "from_domain", "normalized_subject", "content_hash_prefix", "earliest_year", "examples"},
		clusterRecords)
	if err != nil {
		return err
	}

	// Sample of unique signatures
	sampleRecords := make([][]string, 0, len(snap.UniqueSamples))
	for _, s := range snap.UniqueSamples {
		sampleRecords = append(sampleRecords, []string{
			dash(s.Signature.FromDomain),
			dash(s.Signature.Subject),
			s.Signature.HashPrefix(10),
			s.EarliestYear,
			joinExamples(s.Examples, false),
		})
	}
	err = corpus.WriteCSV(filepath.Join(runDir, "unique_examples.csv"),
		[]string{"from_domain", "normalized_subject", "content_hash_prefix", "earliest_year", "example_subjects"},
		sampleRecords)
	if err != nil {
		return err
	}

	// Per-row cue summary
	rowRecords := make([][]string, 0, len(rows))
	for _, row := range rows {
		rowRecords = append(rowRecords, oh.record(row))
	}
	if err := corpus.WriteCSV(filepath.Join(runDir, "cue_summary.csv"), oh.header, rowRecords); err != nil {
		return err
	}

	// Overall JSON
	overview := struct {
		RunID string `json:"run_id"`
		Input string `json:"input_dir"`
		Files int    `json:"files_scanned"`
		census.Snapshot
	}{runMeta.ID, input, fileCount, snap}
	return corpus.WriteJSON(filepath.Join(runDir, "overall.json"), overview)
}

func printSummary(snap census.Snapshot, runDir string, fileCount int) {
	bold := color.New(color.Bold)
	bold.Println("\n=== Corpus Census ===")
	fmt.Println("Files scanned:           ", fileCount)
	fmt.Println("Total rows:              ", snap.TotalRows)
	fmt.Println("Email-like rows:         ", snap.EmailLikeRows)
	color.Green("Unique emails (deduped):  %d", snap.UniqueEmails)
	color.Yellow("Estimated duplicates:     %d (%.2f%% of email-like)",
		snap.EstimatedDuplicates, snap.DuplicateRatePercent)
	fmt.Println("Done. Outputs in", runDir)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinExamples(examples []census.Example, withSource bool) string {
	parts := make([]string, 0, len(examples))
	for _, ex := range examples {
		if withSource {
			parts = append(parts, ex.Source+" :: "+ex.Subject)
		} else {
			parts = append(parts, ex.Subject)
		}
	}
	return strings.Join(parts, " | ")
}
