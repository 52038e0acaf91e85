package fusion

import "sort"

// Reconcile groups all FusionCalls across all sources by identity and
// builds one FusionRecord per distinct identity observed in this run,
// annotated against the historical, curated-reference, and
// previously-reported-positive lookups.
//
// Grouping is by the canonical gene-pair key, so calls with breakpoints
// and calls without group together; conflicting breakpoints across sources
// are retained under the same identity rather than rejected. The emitted
// list is ordered by first appearance, visiting sources in precedence
// order so record contents and order are independent of how the caller
// assembled its input maps.
func Reconcile(
	callsBySource map[Source][]FusionCall,
	reference map[Key][]ReferenceEntry,
	historical map[Key]HistoricalObservation,
	positives map[Key]PositiveEntry,
	opts Opts) []FusionRecord {

	sources := make([]Source, 0, len(callsBySource))
	seen := map[Source]bool{}
	for _, src := range SourcePrecedence {
		if _, ok := callsBySource[src]; ok {
			sources = append(sources, src)
			seen[src] = true
		}
	}
	// Any source outside the precedence list still gets grouped; order them
	// by name to keep the output stable.
	var extra []Source
	for src := range callsBySource {
		if !seen[src] {
			extra = append(extra, src)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	sources = append(sources, extra...)

	byKey := map[Key]*FusionRecord{}
	var order []Key
	for _, src := range sources {
		for _, call := range callsBySource[src] {
			k := call.ID.Key()
			rec, ok := byKey[k]
			if !ok {
				rec = &FusionRecord{ID: call.ID, Calls: map[Source][]FusionCall{}}
				byKey[k] = rec
				order = append(order, k)
			}
			rec.Calls[call.Source] = append(rec.Calls[call.Source], call)
		}
	}

	records := make([]FusionRecord, 0, len(order))
	for _, k := range order {
		rec := byKey[k]
		if obs, ok := historical[k]; ok {
			rec.HistoricalCount = obs.Count
		}
		for _, ent := range reference[k] {
			// Curated entries rarely carry coordinates; when they do, honor
			// the same tolerance rule used everywhere else.
			if rec.ID.Same(ent.ID, opts) {
				rec.ReferenceHits = append(rec.ReferenceHits, ent)
			}
		}
		if pos, ok := positives[k]; ok {
			rec.PreviousPositive = true
			rec.PreviousSpecimens = append(rec.PreviousSpecimens, pos.Specimens...)
		}
		records = append(records, *rec)
	}
	return records
}
