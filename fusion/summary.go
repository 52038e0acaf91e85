package fusion

import (
	"sort"
	"strings"
)

// SummaryRow is the subset of a FusionRecord surfaced in the top-level
// summary view. Conflicting source values are resolved by SourcePrecedence.
// Derived, read-only, one per record.
type SummaryRow struct {
	FusionName      string
	Specimen        string
	LeftBreakpoint  string
	RightBreakpoint string

	JunctionReads int
	SpanningReads int
	FFPM          float64
	Frame         string

	HistoricalCount   int
	ReferenceSources  string
	PreviousPositives string

	// Recurrent, Known, and PreviouslyReported are independent; all three
	// may be set at once.
	Recurrent          bool
	Known              bool
	PreviouslyReported bool

	Sources []Source
}

// flattenByPrecedence returns the record's calls ordered by source
// precedence, then by input order within each source. The flattened order
// makes "first non-missing value wins" a single scan.
func flattenByPrecedence(rec *FusionRecord) []FusionCall {
	var out []FusionCall
	for _, src := range SourcePrecedence {
		out = append(out, rec.Calls[src]...)
	}
	return out
}

// Summarize derives one SummaryRow per FusionRecord, preserving input
// order. No record is ever dropped: filtering and highlighting are
// presentation concerns left to the workbook.
func Summarize(records []FusionRecord) []SummaryRow {
	rows := make([]SummaryRow, 0, len(records))
	for i := range records {
		rows = append(rows, summarize(&records[i]))
	}
	return rows
}

func summarize(rec *FusionRecord) SummaryRow {
	row := SummaryRow{
		FusionName:      rec.ID.Name(),
		JunctionReads:   Missing,
		SpanningReads:   Missing,
		FFPM:            Missing,
		HistoricalCount: rec.HistoricalCount,
		Sources:         rec.Sources(),
	}

	for _, call := range flattenByPrecedence(rec) {
		if row.Specimen == "" {
			row.Specimen = call.Specimen
		}
		if row.LeftBreakpoint == "" && call.ID.BreakpointA != nil && call.ID.BreakpointB != nil {
			row.LeftBreakpoint = call.ID.BreakpointA.String()
			row.RightBreakpoint = call.ID.BreakpointB.String()
		}
		if row.JunctionReads == Missing && call.JunctionReads != Missing {
			row.JunctionReads = call.JunctionReads
		}
		if row.SpanningReads == Missing && call.SpanningReads != Missing {
			row.SpanningReads = call.SpanningReads
		}
		if row.FFPM < 0 && call.FFPM >= 0 {
			row.FFPM = call.FFPM
		}
		if row.Frame == "" && call.Frame != "" {
			row.Frame = call.Frame
		}
	}

	labels := map[string]bool{}
	for _, hit := range rec.ReferenceHits {
		for _, s := range hit.Sources {
			labels[s] = true
		}
	}
	row.ReferenceSources = joinSorted(labels)
	row.PreviousPositives = joinSorted(toSet(rec.PreviousSpecimens))

	row.Recurrent = rec.HistoricalCount > 0
	row.Known = len(rec.ReferenceHits) > 0
	row.PreviouslyReported = rec.PreviousPositive
	return row
}

func toSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func joinSorted(set map[string]bool) string {
	if len(set) == 0 {
		return ""
	}
	vals := make([]string, 0, len(set))
	for v := range set {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return strings.Join(vals, ",")
}
