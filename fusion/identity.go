package fusion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minio/highwayhash"
)

// Key is the canonical grouping key of a fusion identity. Two identities
// naming the same genes in either order have the same Key, regardless of
// breakpoint data.
type Key [highwayhash.Size]uint8

var zeroSeed = Key{}

// Breakpoint is one genomic coordinate of a fusion junction.
type Breakpoint struct {
	Chrom string
	Pos   int
	// Strand is "+", "-", or empty when the source does not report it.
	Strand string
}

// ParseBreakpoint parses a breakpoint descriptor of form "chr7:98237000:+"
// or "chr7:98237000" (strand omitted).
func ParseBreakpoint(s string) (Breakpoint, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Breakpoint{}, fmt.Errorf("malformed breakpoint %q", s)
	}
	pos, err := strconv.Atoi(parts[1])
	if err != nil {
		return Breakpoint{}, fmt.Errorf("malformed breakpoint %q: %v", s, err)
	}
	bp := Breakpoint{Chrom: parts[0], Pos: pos}
	if len(parts) == 3 {
		bp.Strand = parts[2]
	}
	return bp, nil
}

// String renders the breakpoint in the same chr:pos[:strand] form it was
// parsed from.
func (b Breakpoint) String() string {
	if b.Strand == "" {
		return fmt.Sprintf("%s:%d", b.Chrom, b.Pos)
	}
	return fmt.Sprintf("%s:%d:%s", b.Chrom, b.Pos, b.Strand)
}

// compatible reports whether two breakpoints refer to the same coordinate
// within tolerance bases. A nil breakpoint on either side is unknown and
// matches anything.
func compatible(a, b *Breakpoint, tolerance int) bool {
	if a == nil || b == nil {
		return true
	}
	if !strings.EqualFold(a.Chrom, b.Chrom) {
		return false
	}
	if a.Strand != "" && b.Strand != "" && a.Strand != b.Strand {
		return false
	}
	d := a.Pos - b.Pos
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// Identity is the canonical key for a fusion: an unordered pair of gene
// symbols plus optional breakpoint coordinates per partner. GeneA sorts
// before GeneB; the breakpoints follow their genes through the swap.
// Immutable once constructed.
type Identity struct {
	GeneA, GeneB             string
	BreakpointA, BreakpointB *Breakpoint
}

// NewIdentity canonicalizes a gene pair and optional breakpoints. Symbols
// are whitespace-trimmed and case-folded to upper case, then ordered
// lexicographically so that (A,B) and (B,A) produce the same identity.
func NewIdentity(geneA, geneB string, bpA, bpB *Breakpoint) (Identity, error) {
	a := strings.ToUpper(strings.TrimSpace(geneA))
	b := strings.ToUpper(strings.TrimSpace(geneB))
	if a == "" || b == "" {
		return Identity{}, &MalformedIdentityError{GeneA: geneA, GeneB: geneB}
	}
	if a > b {
		a, b = b, a
		bpA, bpB = bpB, bpA
	}
	return Identity{GeneA: a, GeneB: b, BreakpointA: bpA, BreakpointB: bpB}, nil
}

// ParseFusionName splits a fusion name of form "GENE1--GENE2" (STAR-Fusion
// style) or "GENE1::GENE2" (curated-list style) into its gene symbols.
func ParseFusionName(name string) (geneA, geneB string, err error) {
	sep := "--"
	if !strings.Contains(name, sep) {
		sep = "::"
	}
	parts := strings.SplitN(name, sep, 2)
	if len(parts) != 2 {
		return "", "", &MalformedIdentityError{GeneA: name}
	}
	return parts[0], parts[1], nil
}

// Name returns the canonical "GENEA--GENEB" form of this identity.
func (id Identity) Name() string {
	return id.GeneA + "--" + id.GeneB
}

// Key returns the grouping key of this identity: a hash of its canonical
// gene pair. Breakpoints are deliberately excluded so that calls with and
// without coordinates group together.
func (id Identity) Key() Key {
	buf := make([]uint8, 0, len(id.GeneA)+len(id.GeneB)+1)
	buf = append(buf, id.GeneA...)
	buf = append(buf, 0)
	buf = append(buf, id.GeneB...)
	return highwayhash.Sum(buf, zeroSeed[:])
}

// Same reports whether two identities are the same fusion under the
// equivalence rule: equal gene pairs, and breakpoints compatible within
// opts.BreakpointTolerance on both sides (unknown matches anything).
func (id Identity) Same(other Identity, opts Opts) bool {
	if id.GeneA != other.GeneA || id.GeneB != other.GeneB {
		return false
	}
	return compatible(id.BreakpointA, other.BreakpointA, opts.BreakpointTolerance) &&
		compatible(id.BreakpointB, other.BreakpointB, opts.BreakpointTolerance)
}
