package main

// fusion-workbook aggregates the per-specimen outputs of the RNA fusion
// pipeline (STAR-Fusion, FusionInspector, Arriba, MultiQC FastQC) for one
// sequencing project, reconciles them against the curated reference, the
// historical calls and the previously reported positives, and renders the
// review workbook.
//
// Example 1: full run.
//
//    fusion-workbook -project 25PCAN4 \
//        -starfusion a.star-fusion.tsv,b.star-fusion.tsv \
//        -fusioninspector a.abridged.tsv,b.abridged.tsv \
//        -arriba a.fusions.tsv \
//        -fastqc multiqc_fastqc.txt \
//        -reference fusion_reference.tsv -historical predicted.tsv \
//        -previous-positives positives.csv \
//        -records-output 25PCAN4.rio
//
// Example 2: re-render the workbook from a previous run's record dump.
//
//    fusion-workbook -project 25PCAN4 -records-input 25PCAN4.rio

import (
	"context"
	"flag"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/errors"

	"github.com/eastgenomics/fusion-workbook/fusion"
	"github.com/eastgenomics/fusion-workbook/parse/arriba"
	"github.com/eastgenomics/fusion-workbook/parse/fastqc"
	"github.com/eastgenomics/fusion-workbook/parse/fusioninspector"
	"github.com/eastgenomics/fusion-workbook/parse/starfusion"
	"github.com/eastgenomics/fusion-workbook/reference"
	"github.com/eastgenomics/fusion-workbook/workbook"
)

// Collection of options set via cmdline flags.
type workbookFlags struct {
	starFusionPaths      string
	fusionInspectorPaths string
	arribaPaths          string
	fastqcPaths          string

	referencePath  string
	historicalPath string
	positivesPath  string

	project       string
	outputDir     string
	summaryTSV    string
	recordsInput  string
	recordsOutput string
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type callParser func(ctx context.Context, paths ...string) ([]fusion.FusionCall, fusion.Stats, error)

// parseCallers runs the per-tool parsers in parallel and returns the calls
// grouped by source.
func parseCallers(ctx context.Context, flags workbookFlags) (map[fusion.Source][]fusion.FusionCall, fusion.Stats, error) {
	tasks := []struct {
		source fusion.Source
		paths  []string
		parse  callParser
	}{
		{fusion.StarFusion, splitPaths(flags.starFusionPaths), starfusion.Parse},
		{fusion.FusionInspector, splitPaths(flags.fusionInspectorPaths), fusioninspector.Parse},
		{fusion.Arriba, splitPaths(flags.arribaPaths), arriba.Parse},
	}
	type result struct {
		calls []fusion.FusionCall
		stats fusion.Stats
	}
	results := make([]result, len(tasks))
	err := traverse.Each(len(tasks), func(i int) error {
		if len(tasks[i].paths) == 0 {
			return nil
		}
		calls, stats, err := tasks[i].parse(ctx, tasks[i].paths...)
		if err != nil {
			return err
		}
		results[i] = result{calls: calls, stats: stats}
		return nil
	})
	if err != nil {
		return nil, fusion.Stats{}, err
	}
	callsBySource := map[fusion.Source][]fusion.FusionCall{}
	var stats fusion.Stats
	for i, task := range tasks {
		if results[i].calls != nil {
			callsBySource[task.source] = results[i].calls
		}
		stats = stats.Merge(results[i].stats)
	}
	return callsBySource, stats, nil
}

// callsFromRecords rebuilds the per-source call lists from a record dump,
// preserving record order.
func callsFromRecords(records []fusion.FusionRecord) map[fusion.Source][]fusion.FusionCall {
	out := map[fusion.Source][]fusion.FusionCall{}
	for _, rec := range records {
		for _, src := range rec.Sources() {
			out[src] = append(out[src], rec.Calls[src]...)
		}
	}
	return out
}

// historicalFromRecords rebuilds the historical lookup from the counts
// annotated on a record dump.
func historicalFromRecords(records []fusion.FusionRecord) map[fusion.Key]fusion.HistoricalObservation {
	out := map[fusion.Key]fusion.HistoricalObservation{}
	for _, rec := range records {
		if rec.HistoricalCount > 0 {
			out[rec.ID.Key()] = fusion.HistoricalObservation{ID: rec.ID, Count: rec.HistoricalCount}
		}
	}
	return out
}

// summaryTSVHeader mirrors the workbook Summary sheet for the optional TSV
// sidecar. Unreported values render as empty strings.
const summaryTSVHeader = "SPECIMEN\t#FusionName\tLeftBreakpoint\tRightBreakpoint\t" +
	"JunctionReadCount\tSpanningFragCount\tCount_predicted\tReferenceSources\t" +
	"PreviousPositives\tFRAME\tFFPM\tSources"

func fmtCount(v int) string {
	if v == fusion.Missing {
		return ""
	}
	return strconv.Itoa(v)
}

func fmtFFPM(v float64) string {
	if v < 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSummaryTSV(ctx context.Context, path string, rows []fusion.SummaryRow) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString(summaryTSVHeader)
	if err := w.EndLine(); err != nil {
		return err
	}
	for _, s := range rows {
		labels := make([]string, len(s.Sources))
		for i, src := range s.Sources {
			labels[i] = string(src)
		}
		w.WriteString(s.Specimen)
		w.WriteString(s.FusionName)
		w.WriteString(s.LeftBreakpoint)
		w.WriteString(s.RightBreakpoint)
		w.WriteString(fmtCount(s.JunctionReads))
		w.WriteString(fmtCount(s.SpanningReads))
		w.WriteString(strconv.Itoa(s.HistoricalCount))
		w.WriteString(s.ReferenceSources)
		w.WriteString(s.PreviousPositives)
		w.WriteString(s.Frame)
		w.WriteString(fmtFFPM(s.FFPM))
		w.WriteString(strings.Join(labels, ","))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := out.Close(ctx); err != nil {
		return err
	}
	log.Printf("Wrote %d summary rows to %s", len(rows), path)
	return nil
}

func run(ctx context.Context, flags workbookFlags, opts fusion.Opts) error {
	if flags.project == "" {
		return errors.New("-project is required")
	}

	var (
		records       []fusion.FusionRecord
		callsBySource map[fusion.Source][]fusion.FusionCall
		historical    map[fusion.Key]fusion.HistoricalObservation
		stats         fusion.Stats
		err           error
	)
	if flags.recordsInput != "" {
		r := newRecordReader(ctx, flags.recordsInput)
		for r.Scan() {
			records = append(records, r.Get())
		}
		opts = r.Opts()
		r.Close(ctx)
		log.Printf("Read %d records from %s", len(records), flags.recordsInput)
		callsBySource = callsFromRecords(records)
		historical = historicalFromRecords(records)
	} else {
		callsBySource, stats, err = parseCallers(ctx, flags)
		if err != nil {
			return err
		}

		var ref map[fusion.Key][]fusion.ReferenceEntry
		if flags.referencePath != "" {
			if ref, err = reference.LoadReference(ctx, flags.referencePath); err != nil {
				return err
			}
		}
		if flags.historicalPath != "" {
			if historical, err = reference.LoadHistorical(ctx, flags.historicalPath); err != nil {
				return err
			}
		}
		var positives map[fusion.Key]fusion.PositiveEntry
		if flags.positivesPath != "" {
			if positives, err = reference.LoadPositives(ctx, flags.positivesPath); err != nil {
				return err
			}
		}
		records = fusion.Reconcile(callsBySource, ref, historical, positives, opts)

		if flags.recordsOutput != "" {
			w := newRecordWriter(ctx, flags.recordsOutput, opts)
			for _, rec := range records {
				w.Write(rec)
			}
			w.Close(ctx)
			log.Printf("Wrote %d records to %s", len(records), flags.recordsOutput)
		}
	}

	var metrics []fusion.QCMetric
	if paths := splitPaths(flags.fastqcPaths); len(paths) > 0 {
		var qcStats fusion.Stats
		if metrics, qcStats, err = fastqc.Parse(ctx, paths...); err != nil {
			return err
		}
		stats = stats.Merge(qcStats)
	}

	for _, row := range stats.SkippedRows {
		log.Error.Printf("Skipped row: %s", row.String())
	}
	log.Printf("Stats: %d files, %d rows, %d calls, %d skipped",
		stats.Files, stats.Rows, stats.Calls, stats.Skipped)

	rows := fusion.Summarize(records)
	outPath := filepath.Join(flags.outputDir, flags.project+workbook.Suffix)
	if err := workbook.Write(outPath, callsBySource, metrics, historical, rows); err != nil {
		return err
	}
	if flags.summaryTSV != "" {
		if err := writeSummaryTSV(ctx, flags.summaryTSV, rows); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	opts := fusion.DefaultOpts
	flags := workbookFlags{}
	flag.StringVar(&flags.starFusionPaths, "starfusion", "", "Comma-separated list of STAR-Fusion prediction files.")
	flag.StringVar(&flags.fusionInspectorPaths, "fusioninspector", "", "Comma-separated list of FusionInspector abridged files.")
	flag.StringVar(&flags.arribaPaths, "arriba", "", "Comma-separated list of Arriba fusions.tsv files.")
	flag.StringVar(&flags.fastqcPaths, "fastqc", "", "Comma-separated list of MultiQC FastQC tables (multiqc_fastqc.txt).")
	flag.StringVar(&flags.referencePath, "reference", "", "Curated fusion reference TSV.")
	flag.StringVar(&flags.historicalPath, "historical", "", "Historical predicted-fusion counts TSV from prior runs.")
	flag.StringVar(&flags.positivesPath, "previous-positives", "", "CSV of fusions previously reported as positive.")
	flag.StringVar(&flags.project, "project", "", "Project name; the workbook is written as <project>"+workbook.Suffix+".")
	flag.StringVar(&flags.outputDir, "output-dir", ".", "Directory the workbook is written to.")
	flag.StringVar(&flags.summaryTSV, "summary-tsv", "", "If set, also write the summary sheet as TSV to this path.")
	flag.StringVar(&flags.recordsOutput, "records-output", "", "If set, dump the reconciled records to this recordio file.")
	flag.StringVar(&flags.recordsInput, "records-input", "", `If nonempty, skip parsing and reconciliation and re-render the
workbook from this recordio dump. Caller and reference flags are ignored.`)
	flag.IntVar(&opts.BreakpointTolerance, "breakpoint-tolerance", fusion.DefaultOpts.BreakpointTolerance,
		"Max distance in bases for two breakpoints to be treated as the same junction.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if err := run(ctx, flags, opts); err != nil {
		log.Fatalf("fusion-workbook: %v", err)
	}
	log.Printf("All done")
}
