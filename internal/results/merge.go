package results

import (
	"sort"

	"github.com/paddleworks/slalomboard/internal/feed"
)

// RunFigures is one clean run's clock, kept both raw and in
// centiseconds. Total includes the penalty seconds.
type RunFigures struct {
	Time    string
	Penalty int
	TotalCS int64
}

// figuresOf extracts the run figures from one standings row. ok is
// false for rows that cannot rank: DNS/DNF/DSQ or an unparseable
// clock.
func figuresOf(row feed.ResultRow) (RunFigures, bool) {
	if row.Status != "" {
		return RunFigures{}, false
	}
	cs, err := feed.ParseCentiseconds(row.Total)
	if err != nil {
		return RunFigures{}, false
	}
	return RunFigures{
		Time:    row.Total,
		Penalty: row.Penalty,
		TotalCS: cs + int64(row.Penalty)*100,
	}, true
}

// FirstRunIndex folds first-run standings into a bib-keyed merge index.
// Rows that cannot rank are left out; a bib absent from the index
// merges as a second-run-only entry.
func FirstRunIndex(rows []feed.ResultRow) map[string]RunFigures {
	idx := make(map[string]RunFigures, len(rows))
	for _, row := range rows {
		if fig, ok := figuresOf(row); ok {
			idx[row.Bib] = fig
		}
	}
	return idx
}

// Merge upgrades second-run standings with best-of-two figures and
// re-ranks by merged total. A bib with a first-run entry gets a Best
// block; ties go to the first run. Rows with no rankable run keep
// their arrival order below the ranked rows.
func Merge(rows []feed.ResultRow, firstRun map[string]RunFigures) []feed.ResultRow {
	type entry struct {
		row      feed.ResultRow
		totalCS  int64
		rankable bool
	}
	entries := make([]entry, 0, len(rows))
	for _, row := range rows {
		e := entry{row: row}
		run2, ok2 := figuresOf(row)
		if ok2 {
			e.totalCS = run2.TotalCS
			e.rankable = true
		}
		if run1, ok1 := firstRun[row.Bib]; ok1 {
			best := run1.TotalCS
			bestRun := 1
			if ok2 && run2.TotalCS < run1.TotalCS {
				best = run2.TotalCS
				bestRun = 2
			}
			e.row.Best = &feed.BestOfTwo{
				Total:       feed.FormatCentiseconds(best),
				BestRun:     bestRun,
				Run1Time:    run1.Time,
				Run1Penalty: run1.Penalty,
				Run2Time:    row.Total,
				Run2Penalty: row.Penalty,
			}
			e.totalCS = best
			e.rankable = true
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].rankable != entries[j].rankable {
			return entries[i].rankable
		}
		if !entries[i].rankable {
			return false
		}
		return entries[i].totalCS < entries[j].totalCS
	})
	merged := make([]feed.ResultRow, len(entries))
	for i := range entries {
		entries[i].row.Rank = i + 1
		// Second-run gaps are meaningless after the merge.
		entries[i].row.Behind = ""
		if entries[i].rankable && i > 0 && entries[0].rankable {
			delta := entries[i].totalCS - entries[0].totalCS
			if delta > 0 {
				entries[i].row.Behind = "+" + feed.FormatCentiseconds(delta)
			}
		}
		merged[i] = entries[i].row
	}
	return merged
}
