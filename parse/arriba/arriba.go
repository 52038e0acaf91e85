// Package arriba parses Arriba fusions.tsv output. Arriba is the
// secondary, alignment-based caller; it reports genes in separate columns,
// breakpoints without strand, and split-read counts per partner.
package arriba

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/log"

	"github.com/eastgenomics/fusion-workbook/fusion"
	"github.com/eastgenomics/fusion-workbook/parse"
)

var RequiredColumns = []string{
	"#gene1",
	"gene2",
	"breakpoint1",
	"breakpoint2",
	"split_reads1",
	"split_reads2",
	"discordant_mates",
	"confidence",
}

type row struct {
	Gene1           string `tsv:"#gene1"`
	Gene2           string `tsv:"gene2"`
	Breakpoint1     string `tsv:"breakpoint1"`
	Breakpoint2     string `tsv:"breakpoint2"`
	SplitReads1     string `tsv:"split_reads1"`
	SplitReads2     string `tsv:"split_reads2"`
	DiscordantMates string `tsv:"discordant_mates"`
	Confidence      string `tsv:"confidence"`
}

// Parse reads one or more Arriba fusions.tsv files, concatenating calls in
// argument order and preserving row order per file.
func Parse(ctx context.Context, paths ...string) ([]fusion.FusionCall, fusion.Stats, error) {
	var (
		calls []fusion.FusionCall
		stats fusion.Stats
	)
	for _, path := range paths {
		data, err := parse.ReadFile(ctx, path)
		if err != nil {
			return nil, stats, err
		}
		if err := parse.RequireColumns(fusion.Arriba, path, parse.Header(data, '\t'), RequiredColumns...); err != nil {
			return nil, stats, err
		}
		stats.Files++

		base := parse.BaseName(path)
		specimen := parse.SpecimenID(base)
		r := parse.NewReader(data, '\t')
		usable := 0
		for line := 2; ; line++ {
			var rec row
			if err := r.Read(&rec); err != nil {
				if err == io.EOF {
					break
				}
				stats.Rows++
				stats.Skipped++
				stats.SkippedRows = append(stats.SkippedRows, fusion.SkippedRow{
					Source: string(fusion.Arriba), Path: base, Line: line, Reason: err.Error(),
				})
				continue
			}
			stats.Rows++
			call, err := toCall(rec, base, specimen)
			if err != nil {
				stats.Skipped++
				stats.SkippedRows = append(stats.SkippedRows, fusion.SkippedRow{
					Source: string(fusion.Arriba), Path: base, Line: line, Reason: err.Error(),
				})
				continue
			}
			calls = append(calls, call)
			usable++
		}
		if usable == 0 {
			return nil, stats, &fusion.EmptyResultError{Source: string(fusion.Arriba), Path: path}
		}
		log.Printf("%s: parsed %d Arriba calls", base, usable)
	}
	stats.Calls = len(calls)
	return calls, stats, nil
}

func toCall(rec row, file, specimen string) (fusion.FusionCall, error) {
	bp1, err := fusion.ParseBreakpoint(rec.Breakpoint1)
	if err != nil {
		return fusion.FusionCall{}, err
	}
	bp2, err := fusion.ParseBreakpoint(rec.Breakpoint2)
	if err != nil {
		return fusion.FusionCall{}, err
	}
	id, err := fusion.NewIdentity(rec.Gene1, rec.Gene2, &bp1, &bp2)
	if err != nil {
		return fusion.FusionCall{}, err
	}
	split1, err := strconv.Atoi(rec.SplitReads1)
	if err != nil {
		return fusion.FusionCall{}, fmt.Errorf("split_reads1 %q: not a number", rec.SplitReads1)
	}
	split2, err := strconv.Atoi(rec.SplitReads2)
	if err != nil {
		return fusion.FusionCall{}, fmt.Errorf("split_reads2 %q: not a number", rec.SplitReads2)
	}
	discordant, err := strconv.Atoi(rec.DiscordantMates)
	if err != nil {
		return fusion.FusionCall{}, fmt.Errorf("discordant_mates %q: not a number", rec.DiscordantMates)
	}
	return fusion.FusionCall{
		ID:       id,
		Source:   fusion.Arriba,
		File:     file,
		Specimen: specimen,
		// Arriba reports split reads per partner; their sum is the junction
		// evidence comparable to the other callers' counts.
		JunctionReads:   split1 + split2,
		SpanningReads:   fusion.Missing,
		DiscordantMates: discordant,
		FFPM:            fusion.Missing,
		Confidence:      rec.Confidence,
	}, nil
}
