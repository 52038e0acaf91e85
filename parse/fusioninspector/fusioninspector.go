// Package fusioninspector parses FusionInspector abridged output
// (*FusionInspector.fusions.abridged.tsv). FusionInspector re-examines the
// primary caller's candidates; its calls carry the frame annotation
// (PROT_FUSION_TYPE) surfaced in the summary.
package fusioninspector

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
	"#FusionName",
	"JunctionReadCount",
	"SpanningFragCount",
	"LeftBreakpoint",
	"RightBreakpoint",
	"PROT_FUSION_TYPE",
}

type row struct {
	FusionName        string `tsv:"#FusionName"`
	JunctionReadCount string `tsv:"JunctionReadCount"`
	SpanningFragCount string `tsv:"SpanningFragCount"`
	LeftBreakpoint    string `tsv:"LeftBreakpoint"`
	RightBreakpoint   string `tsv:"RightBreakpoint"`
	ProtFusionType    string `tsv:"PROT_FUSION_TYPE"`
}

// Parse reads one or more FusionInspector abridged files, concatenating
// calls in argument order and preserving row order per file.
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
		if err := parse.RequireColumns(fusion.FusionInspector, path, parse.Header(data, '\t'), RequiredColumns...); err != nil {
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
					Source: string(fusion.FusionInspector), Path: base, Line: line, Reason: err.Error(),
				})
				continue
			}
			stats.Rows++
			call, err := toCall(rec, base, specimen)
			if err != nil {
				stats.Skipped++
				stats.SkippedRows = append(stats.SkippedRows, fusion.SkippedRow{
					Source: string(fusion.FusionInspector), Path: base, Line: line, Reason: err.Error(),
				})
				continue
			}
			calls = append(calls, call)
			usable++
		}
		if usable == 0 {
			return nil, stats, &fusion.EmptyResultError{Source: string(fusion.FusionInspector), Path: path}
		}
		log.Printf("%s: parsed %d FusionInspector calls", base, usable)
	}
	stats.Calls = len(calls)
	return calls, stats, nil
}

func toCall(rec row, file, specimen string) (fusion.FusionCall, error) {
	geneA, geneB, err := fusion.ParseFusionName(rec.FusionName)
	if err != nil {
		return fusion.FusionCall{}, err
	}
	left, err := fusion.ParseBreakpoint(rec.LeftBreakpoint)
	if err != nil {
		return fusion.FusionCall{}, err
	}
	right, err := fusion.ParseBreakpoint(rec.RightBreakpoint)
	if err != nil {
		return fusion.FusionCall{}, err
	}
	id, err := fusion.NewIdentity(geneA, geneB, &left, &right)
	if err != nil {
		return fusion.FusionCall{}, err
	}
	junction, err := strconv.Atoi(rec.JunctionReadCount)
	if err != nil {
		return fusion.FusionCall{}, fmt.Errorf("JunctionReadCount %q: not a number", rec.JunctionReadCount)
	}
	spanning, err := strconv.Atoi(rec.SpanningFragCount)
	if err != nil {
		return fusion.FusionCall{}, fmt.Errorf("SpanningFragCount %q: not a number", rec.SpanningFragCount)
	}
	return fusion.FusionCall{
		ID:              id,
		Source:          fusion.FusionInspector,
		File:            file,
		Specimen:        specimen,
		JunctionReads:   junction,
		SpanningReads:   spanning,
		DiscordantMates: fusion.Missing,
		FFPM:            fusion.Missing,
		Frame:           rec.ProtFusionType,
	}, nil
}
