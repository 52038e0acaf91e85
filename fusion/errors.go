package fusion

import "fmt"

// SchemaError reports a required column missing from an input or reference
// file. It is fatal for the file: a missing required field cannot be
// guessed, so the run aborts rather than emitting a partially-correct
// report.
type SchemaError struct {
	Source string
	Path   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: required column %q missing from header", e.Source, e.Path, e.Column)
}

// MalformedIdentityError reports a gene pair from which no identity can be
// formed, e.g. an empty symbol after trimming.
type MalformedIdentityError struct {
	GeneA, GeneB string
}

func (e *MalformedIdentityError) Error() string {
	return fmt.Sprintf("malformed fusion identity (%q, %q)", e.GeneA, e.GeneB)
}

// EmptyResultError reports a source file that yielded zero usable records
// after skipping malformed rows. It is fatal: an empty result cannot be
// distinguished from a misconfigured parser, and must not be reported
// silently as a true negative.
type EmptyResultError struct {
	Source string
	Path   string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: %s: no usable records", e.Source, e.Path)
}

// SkippedRow records one malformed or partially-unparsable row that was
// skipped during parsing. Skips are warnings, not errors: they are
// accumulated in Stats for visibility and never abort the run.
type SkippedRow struct {
	Source string
	Path   string
	Line   int
	Reason string
}

func (s SkippedRow) String() string {
	return fmt.Sprintf("%s: %s:%d: %s", s.Source, s.Path, s.Line, s.Reason)
}
