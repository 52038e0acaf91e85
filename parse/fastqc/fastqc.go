// Package fastqc parses the MultiQC FastQC table (multiqc_fastqc.txt) into
// run-level QC metrics, deriving unique and duplicate read counts from the
// deduplicated percentage the way the reporting workbook expects them.
package fastqc

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
	"Sample",
	"Total Sequences",
	"total_deduplicated_percentage",
}

// Metric names emitted per sample, in emission order.
const (
	TotalSequences  = "Total Sequences"
	UniqueReads     = "Unique Reads"
	DuplicateReads  = "Duplicate Reads"
	UniqueReadsM    = "Unique Reads(M)"
	DuplicateReadsM = "Duplicate Reads(M)"
)

type row struct {
	Sample       string `tsv:"Sample"`
	TotalSeqs    string `tsv:"Total Sequences"`
	DedupPercent string `tsv:"total_deduplicated_percentage"`
}

// Parse reads one or more MultiQC FastQC tables and emits the derived
// metrics per sample, preserving sample order.
func Parse(ctx context.Context, paths ...string) ([]fusion.QCMetric, fusion.Stats, error) {
	var (
		metrics []fusion.QCMetric
		stats   fusion.Stats
	)
	for _, path := range paths {
		data, err := parse.ReadFile(ctx, path)
		if err != nil {
			return nil, stats, err
		}
		if err := parse.RequireColumns(fusion.FastQC, path, parse.Header(data, '\t'), RequiredColumns...); err != nil {
			return nil, stats, err
		}
		stats.Files++

		base := parse.BaseName(path)
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
					Source: string(fusion.FastQC), Path: base, Line: line, Reason: err.Error(),
				})
				continue
			}
			stats.Rows++
			m, err := toMetrics(rec)
			if err != nil {
				stats.Skipped++
				stats.SkippedRows = append(stats.SkippedRows, fusion.SkippedRow{
					Source: string(fusion.FastQC), Path: base, Line: line, Reason: err.Error(),
				})
				continue
			}
			metrics = append(metrics, m...)
			usable++
		}
		if usable == 0 {
			return nil, stats, &fusion.EmptyResultError{Source: string(fusion.FastQC), Path: path}
		}
		log.Printf("%s: parsed QC metrics for %d samples", base, usable)
	}
	stats.Calls = len(metrics)
	return metrics, stats, nil
}

func toMetrics(rec row) ([]fusion.QCMetric, error) {
	total, err := strconv.ParseFloat(rec.TotalSeqs, 64)
	if err != nil {
		return nil, fmt.Errorf("Total Sequences %q: not a number", rec.TotalSeqs)
	}
	dedupPct, err := strconv.ParseFloat(rec.DedupPercent, 64)
	if err != nil {
		return nil, fmt.Errorf("total_deduplicated_percentage %q: not a number", rec.DedupPercent)
	}
	// Same arithmetic as the workbook's source formulas: unique reads floor
	// to whole reads, millions keep the fraction.
	unique := float64(int(dedupPct / 100.0 * total))
	duplicate := total - unique
	specimen := parse.SpecimenID(rec.Sample)

	mk := func(name string, v float64) fusion.QCMetric {
		return fusion.QCMetric{Sample: rec.Sample, Specimen: specimen, Name: name, Value: v}
	}
	return []fusion.QCMetric{
		mk(TotalSequences, total),
		mk(UniqueReads, unique),
		mk(DuplicateReads, duplicate),
		mk(UniqueReadsM, unique/1e6),
		mk(DuplicateReadsM, duplicate/1e6),
	}, nil
}
