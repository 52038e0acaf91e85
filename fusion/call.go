package fusion

// Source identifies the tool that produced a record.
type Source string

const (
	// StarFusion is the primary fusion caller.
	StarFusion Source = "STAR-Fusion"
	// FusionInspector is the validation tool that re-examines candidates.
	FusionInspector Source = "FusionInspector"
	// Arriba is the secondary, alignment-based fusion caller.
	Arriba Source = "Arriba"
	// FastQC is the run-level QC metrics source.
	FastQC Source = "FastQC"
)

// SourcePrecedence is the fixed priority order used when the same logical
// field could be sourced from more than one tool: the first source in this
// list that reported a non-missing value wins.
var SourcePrecedence = []Source{StarFusion, FusionInspector, Arriba}

// Missing marks an evidence count a source did not report.
const Missing = -1

// FusionCall is one observation of a fusion from one source file. Counts
// the source does not report are Missing; FFPM is negative when absent.
// Calls are never mutated after creation.
type FusionCall struct {
	ID     Identity
	Source Source
	// File is the base name of the input file the call came from. Calls from
	// multiple files of one source are concatenated, not merged, so evidence
	// stays auditable per file.
	File     string
	Specimen string

	JunctionReads   int
	SpanningReads   int
	DiscordantMates int
	FFPM            float64
	// Frame is the predicted protein effect (e.g. INFRAME, FRAMESHIFT),
	// reported by the validation tool.
	Frame string
	// Confidence is the caller's own confidence label, when it has one.
	Confidence string
}

// QCMetric is a named numeric quality value tied to a sample of the run,
// not to a specific fusion.
type QCMetric struct {
	Sample   string
	Specimen string
	Name     string
	Value    float64
}

// ReferenceEntry is one curated-database row for a fusion identity.
type ReferenceEntry struct {
	ID Identity
	// Sources lists the curated provenance labels, e.g. COSMIC, Mitelman.
	Sources []string
}

// HistoricalObservation records an identity having been called in prior
// runs of this pipeline.
type HistoricalObservation struct {
	ID    Identity
	Count int
}

// PositiveEntry records an identity previously reported as clinically
// significant, with the specimens it was reported in.
type PositiveEntry struct {
	ID        Identity
	Specimens []string
}

// FusionRecord is the reconciled per-identity aggregate: every source's
// contributing calls plus annotations from the reference lookups.
// Immutable once built; the reconciler is its sole writer.
type FusionRecord struct {
	ID Identity
	// Calls holds, per source, all calls that share this identity, in input
	// order. A source reporting the identity from several files keeps every
	// call rather than collapsing them.
	Calls map[Source][]FusionCall

	HistoricalCount   int
	ReferenceHits     []ReferenceEntry
	PreviousPositive  bool
	PreviousSpecimens []string
}

// Sources returns the sources that reported this record, in precedence
// order.
func (r *FusionRecord) Sources() []Source {
	var out []Source
	for _, src := range SourcePrecedence {
		if len(r.Calls[src]) > 0 {
			out = append(out, src)
		}
	}
	return out
}
