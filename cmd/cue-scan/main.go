// cue-scan runs lexicon-based persuasion-cue detection over every row of
// a CSV corpus and writes per-row JSON and flat CSV summaries.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"github.com/fatih/color"

	"github.com/lexcue/cuescan/internal/corpus"
	"github.com/lexcue/cuescan/pkg/cuescan"
	"github.com/lexcue/cuescan/pkg/cuescan/config"
	"github.com/lexcue/cuescan/pkg/cuescan/record"
	"github.com/lexcue/cuescan/pkg/cuescan/report"
)

func main() {
	var (
		input       = flag.String("input", "", "Directory of CSV files to scan (required)")
		out         = flag.String("out", "outputs", "Output base directory")
		settingsCfg = flag.String("settings", "", "Optional settings YAML")
		lexiconCfg  = flag.String("lexicon", "", "Optional lexicon YAML (overrides settings)")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	loader := config.Loader{
		SettingsPath: *settingsCfg,
		LexiconPath:  *lexiconCfg,
	}
	components, err := loader.Load()
	if err != nil {
		log.Fatalf("load configs: %v", err)
	}
	detector := components.Detector

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
	log.Printf("[cue-scan] run %s scanning %s (%d files)", runMeta.ID, *input, len(files))

	var rows []report.Row
	categoryGrand := map[string]int{}

	for _, path := range files {
		name := filepath.Base(path)
		var (
			cols      record.Columns
			headerRow []string
		)
		err := corpus.ScanFile(path,
			func(header []string) {
				headerRow = header
				cols = record.PickColumns(header)
			},
			func(values []string, index int) error {
				rec := cols.Build(headerRow, values)
				text := cuescan.DetectText(rec)
				totals, extras := detector.DetectWithExtras(text)
				for cat, n := range totals {
					categoryGrand[cat] += n
				}
				rows = append(rows, report.NewRow(
					report.SourceRef(name, index),
					rec.Get("subject"), rec.Get("from"), rec.Get("to"), rec.Get("date"),
					text, totals, extras,
				))
				return nil
			})
		if err != nil {
			log.Printf("scan %s: %v", path, err)
			rows = append(rows, report.Row{Source: name, Err: err.Error()})
		}
	}

	if err := corpus.WriteJSON(filepath.Join(runDir, "cue_scan.json"), rows); err != nil {
		log.Fatalf("write JSON: %v", err)
	}

	lex := detector.Lexicon()
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.CSVRecord(lex))
	}
	if err := corpus.WriteCSV(filepath.Join(runDir, "cue_scan_summary.csv"), report.CSVHeader(lex), records); err != nil {
		log.Fatalf("write CSV: %v", err)
	}

	printSummary(len(rows), categoryGrand, runDir)
}

func printSummary(rowCount int, categoryGrand map[string]int, runDir string) {
	bold := color.New(color.Bold)
	bold.Println("\n=== Cue Scan ===")
	fmt.Printf("Rows scanned: %d\n", rowCount)

	cats := make([]string, 0, len(categoryGrand))
	for cat := range categoryGrand {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		if categoryGrand[cats[i]] == categoryGrand[cats[j]] {
			return cats[i] < cats[j]
		}
		return categoryGrand[cats[i]] > categoryGrand[cats[j]]
	})
	for _, cat := range cats {
		if categoryGrand[cat] == 0 {
			continue
		}
		color.Yellow("  %-24s %d", cat, categoryGrand[cat])
	}
	fmt.Println("Done. Outputs in", runDir)
}
