package census

import "sort"

// Cluster is one group of duplicate emails: a signature seen at least
// twice, with its retained examples.
type Cluster struct {
	Signature    Signature `json:"signature"`
	Count        int       `json:"count"`
	EarliestYear string    `json:"earliest_year"`
	Examples     []Example `json:"examples"`
}

// Sample is one distinct signature retained for review output.
type Sample struct {
	Signature    Signature `json:"signature"`
	EarliestYear string    `json:"earliest_year"`
	Examples     []Example `json:"examples"`
}

// YearCount is one row of the per-year census table.
type YearCount struct {
	Year                string `json:"year"`
	EmailLikeRows       int    `json:"email_like_rows"`
	UniqueEmails        int    `json:"unique_emails"`
	EstimatedDuplicates int    `json:"estimated_duplicates"`
}

// Snapshot is the census result for one full corpus pass. Built once at
// finalize time; copies of the aggregator's state, safe to hold after
// further Process calls.
type Snapshot struct {
	TotalRows            int            `json:"rows_total"`
	EmailLikeRows        int            `json:"email_like_rows"`
	UniqueEmails         int            `json:"unique_emails"`
	EstimatedDuplicates  int            `json:"estimated_duplicates"`
	DuplicateRatePercent float64        `json:"duplicate_rate_percent"`
	Years                []string       `json:"years"`
	PerYearRaw           map[string]int `json:"per_year_raw"`
	PerYearUnique        map[string]int `json:"per_year_unique"`
	YearWindow           YearRange      `json:"year_window"`
	Audit                YearAudit      `json:"year_audit"`
	TopClusters          []Cluster      `json:"top_clusters"`
	UniqueSamples        []Sample       `json:"unique_samples"`
}

// Snapshot reduces the accumulated state to the final census figures:
// unique count, duplicate count and rate, per-year raw and unique tallies,
// top duplicate clusters, and a bounded sample of distinct signatures.
func (a *Aggregator) Snapshot() Snapshot {
	snap := Snapshot{
		TotalRows:     a.totalRows,
		EmailLikeRows: a.emailLike,
		UniqueEmails:  len(a.sigs),
		PerYearRaw:    make(map[string]int, len(a.perYearRaw)),
		PerYearUnique: make(map[string]int),
		YearWindow:    a.opts.Years,
		Audit:         a.audit,
	}

	snap.EstimatedDuplicates = a.emailLike - snap.UniqueEmails
	if snap.EstimatedDuplicates < 0 {
		snap.EstimatedDuplicates = 0
	}
	if a.emailLike > 0 {
		snap.DuplicateRatePercent = float64(snap.EstimatedDuplicates) / float64(a.emailLike) * 100
	}

	for year, n := range a.perYearRaw {
		snap.PerYearRaw[year] = n
	}
	for _, rec := range a.sigs {
		if rec.earliestYear != "" {
			snap.PerYearUnique[rec.earliestYear]++
		}
	}

	yearSet := make(map[string]struct{}, len(snap.PerYearRaw))
	for year := range snap.PerYearRaw {
		yearSet[year] = struct{}{}
	}
	for year := range snap.PerYearUnique {
		yearSet[year] = struct{}{}
	}
	for year := range yearSet {
		snap.Years = append(snap.Years, year)
	}
	sort.Strings(snap.Years)

	// First-seen order, so sample output and cluster tie-breaks are
	// reproducible across runs.
	ordered := make([]Signature, 0, len(a.sigs))
	for sig := range a.sigs {
		ordered = append(ordered, sig)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return a.sigs[ordered[i]].order < a.sigs[ordered[j]].order
	})

	dups := make([]Signature, 0, len(ordered))
	for _, sig := range ordered {
		rec := a.sigs[sig]
		if rec.count >= 2 {
			dups = append(dups, sig)
		}
		if len(snap.UniqueSamples) < a.opts.MaxSamples {
			snap.UniqueSamples = append(snap.UniqueSamples, Sample{
				Signature:    sig,
				EarliestYear: rec.earliestYear,
				Examples:     append([]Example(nil), rec.examples...),
			})
		}
	}
	sort.SliceStable(dups, func(i, j int) bool {
		return a.sigs[dups[i]].count > a.sigs[dups[j]].count
	})
	if len(dups) > a.opts.TopClusters {
		dups = dups[:a.opts.TopClusters]
	}
	for _, sig := range dups {
		rec := a.sigs[sig]
		snap.TopClusters = append(snap.TopClusters, Cluster{
			Signature:    sig,
			Count:        rec.count,
			EarliestYear: rec.earliestYear,
			Examples:     append([]Example(nil), rec.examples...),
		})
	}

	return snap
}

// YearTable renders the per-year tallies as ordered rows, one per year in
// the sorted union of raw and unique years.
func (s Snapshot) YearTable() []YearCount {
	rows := make([]YearCount, 0, len(s.Years))
	for _, year := range s.Years {
		raw := s.PerYearRaw[year]
		uniq := s.PerYearUnique[year]
		dup := raw - uniq
		if dup < 0 {
			dup = 0
		}
		rows = append(rows, YearCount{
			Year:                year,
			EmailLikeRows:       raw,
			UniqueEmails:        uniq,
			EstimatedDuplicates: dup,
		})
	}
	return rows
}
