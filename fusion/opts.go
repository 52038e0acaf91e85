package fusion

type Opts struct {
	// BreakpointTolerance is the maximum distance, in bases, by which two
	// breakpoints on the same chromosome may differ and still be treated as
	// the same coordinate. Zero requires an exact match. A breakpoint that is
	// absent on either side always matches; the gene pair alone then decides
	// identity.
	BreakpointTolerance int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	BreakpointTolerance: 0, // Go: -breakpoint-tolerance
}
