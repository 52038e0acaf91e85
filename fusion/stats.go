package fusion

// Stats represents high-level counters accumulated while parsing and
// reconciling one run's inputs.
type Stats struct {
	// Files is the number of input files read.
	Files int
	// Rows is the number of data rows seen, including skipped ones.
	Rows int
	// Calls is the number of normalized records produced.
	Calls int
	// Skipped is the number of rows dropped as unparsable.
	Skipped int
	// SkippedRows retains one entry per skipped row for reporting.
	SkippedRows []SkippedRow
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Files += o.Files
	s.Rows += o.Rows
	s.Calls += o.Calls
	s.Skipped += o.Skipped
	s.SkippedRows = append(s.SkippedRows, o.SkippedRows...)
	return s
}
