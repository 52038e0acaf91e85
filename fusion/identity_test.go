package fusion

import (
	"errors"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func mustIdentity(t *testing.T, geneA, geneB string, bps ...*Breakpoint) Identity {
	t.Helper()
	var bpA, bpB *Breakpoint
	if len(bps) == 2 {
		bpA, bpB = bps[0], bps[1]
	}
	id, err := NewIdentity(geneA, geneB, bpA, bpB)
	expect.NoError(t, err)
	return id
}

func TestIdentityCommutative(t *testing.T) {
	ab := mustIdentity(t, "KMT2A", "MLLT3")
	ba := mustIdentity(t, "MLLT3", "KMT2A")
	expect.EQ(t, ab, ba)
	expect.EQ(t, ab.Key(), ba.Key())
	expect.EQ(t, ab.Name(), "KMT2A--MLLT3")
}

func TestIdentityFolding(t *testing.T) {
	id := mustIdentity(t, "  kmt2a ", "MLLT3\t")
	expect.EQ(t, id.GeneA, "KMT2A")
	expect.EQ(t, id.GeneB, "MLLT3")
	expect.EQ(t, id.Key(), mustIdentity(t, "KMT2A", "MLLT3").Key())
}

func TestIdentityBreakpointsFollowSwap(t *testing.T) {
	bp1 := &Breakpoint{Chrom: "chr9", Pos: 20365754, Strand: "-"}
	bp2 := &Breakpoint{Chrom: "chr11", Pos: 118481715, Strand: "+"}
	// MLLT3 sorts after KMT2A, so the pair and its breakpoints swap.
	id := mustIdentity(t, "MLLT3", "KMT2A", bp1, bp2)
	expect.EQ(t, id.GeneA, "KMT2A")
	expect.EQ(t, id.BreakpointA, bp2)
	expect.EQ(t, id.BreakpointB, bp1)
}

func TestIdentityEmptySymbol(t *testing.T) {
	_, err := NewIdentity("  ", "MLLT3", nil, nil)
	var malformed *MalformedIdentityError
	expect.True(t, errors.As(err, &malformed))
	_, err = NewIdentity("KMT2A", "", nil, nil)
	expect.NotNil(t, err)
	expect.True(t, strings.Contains(err.Error(), "malformed fusion identity"))
}

func TestBreakpointUnknownCompatible(t *testing.T) {
	bp1 := &Breakpoint{Chrom: "chr9", Pos: 20365754}
	bp2 := &Breakpoint{Chrom: "chr11", Pos: 118481715}
	withBp := mustIdentity(t, "KMT2A", "MLLT3", bp1, bp2)
	without := mustIdentity(t, "KMT2A", "MLLT3")
	expect.EQ(t, withBp.Key(), without.Key())
	expect.True(t, withBp.Same(without, DefaultOpts))
	expect.True(t, without.Same(withBp, DefaultOpts))
}

func TestBreakpointTolerance(t *testing.T) {
	near := func(off int) Identity {
		return mustIdentity(t, "KMT2A", "MLLT3",
			&Breakpoint{Chrom: "chr11", Pos: 118481715 + off, Strand: "+"},
			&Breakpoint{Chrom: "chr9", Pos: 20365754, Strand: "-"})
	}
	exact := near(0)
	expect.True(t, exact.Same(near(0), DefaultOpts))
	expect.False(t, exact.Same(near(3), DefaultOpts))
	expect.True(t, exact.Same(near(3), Opts{BreakpointTolerance: 5}))
	expect.False(t, exact.Same(near(6), Opts{BreakpointTolerance: 5}))
}

func TestBreakpointStrandAndChrom(t *testing.T) {
	plus := mustIdentity(t, "A1", "B1",
		&Breakpoint{Chrom: "chr1", Pos: 100, Strand: "+"},
		&Breakpoint{Chrom: "chr2", Pos: 200, Strand: "+"})
	minus := mustIdentity(t, "A1", "B1",
		&Breakpoint{Chrom: "chr1", Pos: 100, Strand: "-"},
		&Breakpoint{Chrom: "chr2", Pos: 200, Strand: "+"})
	noStrand := mustIdentity(t, "A1", "B1",
		&Breakpoint{Chrom: "chr1", Pos: 100},
		&Breakpoint{Chrom: "chr2", Pos: 200})
	otherChrom := mustIdentity(t, "A1", "B1",
		&Breakpoint{Chrom: "chr3", Pos: 100, Strand: "+"},
		&Breakpoint{Chrom: "chr2", Pos: 200, Strand: "+"})
	expect.False(t, plus.Same(minus, DefaultOpts))
	expect.True(t, plus.Same(noStrand, DefaultOpts))
	expect.False(t, plus.Same(otherChrom, DefaultOpts))
}

func TestParseBreakpoint(t *testing.T) {
	bp, err := ParseBreakpoint("chr7:98237000:+")
	expect.NoError(t, err)
	expect.EQ(t, bp, Breakpoint{Chrom: "chr7", Pos: 98237000, Strand: "+"})
	expect.EQ(t, bp.String(), "chr7:98237000:+")

	bp, err = ParseBreakpoint("chr7:98237000")
	expect.NoError(t, err)
	expect.EQ(t, bp.Strand, "")
	expect.EQ(t, bp.String(), "chr7:98237000")

	_, err = ParseBreakpoint("chr7")
	expect.NotNil(t, err)
	_, err = ParseBreakpoint("chr7:abc:+")
	expect.NotNil(t, err)
}

func TestParseFusionName(t *testing.T) {
	a, b, err := ParseFusionName("KMT2A--MLLT3")
	expect.NoError(t, err)
	expect.EQ(t, a, "KMT2A")
	expect.EQ(t, b, "MLLT3")

	a, b, err = ParseFusionName("BCR::ABL1")
	expect.NoError(t, err)
	expect.EQ(t, a, "BCR")
	expect.EQ(t, b, "ABL1")

	_, _, err = ParseFusionName("NOTAFUSION")
	expect.NotNil(t, err)
}
