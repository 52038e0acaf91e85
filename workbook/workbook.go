// Package workbook renders the parsed and reconciled record sets into the
// multi-sheet xlsx report. It is a serialization layer: every merge and
// annotation decision is already made by the time records arrive here.
package workbook

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/eastgenomics/fusion-workbook/fusion"
	"github.com/eastgenomics/fusion-workbook/parse/fastqc"
)

// Suffix is appended to the owning project's name to form the output file
// name.
const Suffix = "_fusion_workbook.xlsx"

// sheetConfig pins each sheet's name and tab colour.
type sheetConfig struct {
	name     string
	tabColor string
}

var (
	starFusionSheet = sheetConfig{"STAR-Fusion", "800080"}
	inspectorSheet  = sheetConfig{"Fusion_Inspector", "A52A2A"}
	arribaSheet     = sheetConfig{"Arriba", "008080"}
	fastqcSheet     = sheetConfig{"FastQC", "008000"}
	pivotSheet      = sheetConfig{"FastQC_Pivot", "00FF00"}
	predictedSheet  = sheetConfig{"Predicted", "000000"}
	summarySheet    = sheetConfig{"Summary", "9400D3"}
)

var (
	reportedOptions     = []string{"Yes", "No"}
	oncogenicityOptions = []string{"Pathogenic", "Likely Pathogenic", "VUS", "Likely Benign", "Benign"}
)

// Workbook assembles one report file.
type Workbook struct {
	f          *excelize.File
	boldHeader int
}

// New creates an empty workbook with the shared styles prepared.
func New() (*Workbook, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	return &Workbook{f: f, boldHeader: bold}, nil
}

// Write renders all sheets and saves the workbook to path.
func Write(
	path string,
	callsBySource map[fusion.Source][]fusion.FusionCall,
	metrics []fusion.QCMetric,
	historical map[fusion.Key]fusion.HistoricalObservation,
	rows []fusion.SummaryRow) error {

	wb, err := New()
	if err != nil {
		return err
	}
	for _, s := range []struct {
		cfg   sheetConfig
		calls []fusion.FusionCall
	}{
		{starFusionSheet, callsBySource[fusion.StarFusion]},
		{inspectorSheet, callsBySource[fusion.FusionInspector]},
		{arribaSheet, callsBySource[fusion.Arriba]},
	} {
		if err := wb.addCallSheet(s.cfg, s.calls); err != nil {
			return errors.Wrapf(err, "sheet %s", s.cfg.name)
		}
	}
	if err := wb.addFastQCSheet(metrics); err != nil {
		return errors.Wrap(err, "sheet FastQC")
	}
	if err := wb.addFastQCPivot(metrics); err != nil {
		return errors.Wrap(err, "sheet FastQC_Pivot")
	}
	if err := wb.addPredictedSheet(historical); err != nil {
		return errors.Wrap(err, "sheet Predicted")
	}
	if err := wb.addSummarySheet(rows); err != nil {
		return errors.Wrap(err, "sheet Summary")
	}
	if err := wb.f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := wb.f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	log.Printf("Wrote workbook with %d summary rows to %s", len(rows), path)
	return nil
}

// addSheet creates a sheet, writes the header and rows, and applies the
// header bold, tab colour, and fitted column widths every sheet shares.
func (wb *Workbook) addSheet(cfg sheetConfig, header []string, rows [][]interface{}) error {
	if _, err := wb.f.NewSheet(cfg.name); err != nil {
		return err
	}
	color := cfg.tabColor
	if err := wb.f.SetSheetProps(cfg.name, &excelize.SheetPropsOptions{TabColorRGB: &color}); err != nil {
		return err
	}
	head := make([]interface{}, len(header))
	widths := make([]float64, len(header))
	for i, h := range header {
		head[i] = h
		widths[i] = float64(len(h))
	}
	if err := wb.f.SetSheetRow(cfg.name, "A1", &head); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.f.SetSheetRow(cfg.name, cell, &row); err != nil {
			return err
		}
		for j, v := range row {
			if j < len(widths) {
				if w := float64(len(fmt.Sprint(v))); w > widths[j] {
					widths[j] = w
				}
			}
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := wb.f.SetCellStyle(cfg.name, "A1", lastCol+"1", wb.boldHeader); err != nil {
		return err
	}
	for i := range header {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		w := widths[i] + 2
		if w < 10 {
			w = 10
		} else if w > 40 {
			w = 40
		}
		if err := wb.f.SetColWidth(cfg.name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

var callHeader = []string{
	"File", "SPECIMEN", "#FusionName",
	"LeftBreakpoint", "RightBreakpoint",
	"JunctionReadCount", "SpanningFragCount", "DiscordantMates",
	"FFPM", "FRAME", "Confidence",
}

func (wb *Workbook) addCallSheet(cfg sheetConfig, calls []fusion.FusionCall) error {
	rows := make([][]interface{}, 0, len(calls))
	for _, c := range calls {
		var left, right string
		if c.ID.BreakpointA != nil {
			left = c.ID.BreakpointA.String()
		}
		if c.ID.BreakpointB != nil {
			right = c.ID.BreakpointB.String()
		}
		rows = append(rows, []interface{}{
			c.File, c.Specimen, c.ID.Name(),
			left, right,
			optInt(c.JunctionReads), optInt(c.SpanningReads), optInt(c.DiscordantMates),
			optFloat(c.FFPM), c.Frame, c.Confidence,
		})
	}
	return wb.addSheet(cfg, callHeader, rows)
}

var fastqcHeader = []string{
	"Sample", "SPECIMEN",
	fastqc.TotalSequences, fastqc.UniqueReads, fastqc.DuplicateReads,
	fastqc.UniqueReadsM, fastqc.DuplicateReadsM,
}

// addFastQCSheet pivots the per-sample metric stream back into one row per
// sample, columns in the fixed metric order.
func (wb *Workbook) addFastQCSheet(metrics []fusion.QCMetric) error {
	type sampleRow struct {
		specimen string
		values   map[string]float64
	}
	bySample := map[string]*sampleRow{}
	var order []string
	for _, m := range metrics {
		row, ok := bySample[m.Sample]
		if !ok {
			row = &sampleRow{specimen: m.Specimen, values: map[string]float64{}}
			bySample[m.Sample] = row
			order = append(order, m.Sample)
		}
		row.values[m.Name] = m.Value
	}
	rows := make([][]interface{}, 0, len(order))
	for _, sample := range order {
		r := bySample[sample]
		rows = append(rows, []interface{}{
			sample, r.specimen,
			r.values[fastqc.TotalSequences], r.values[fastqc.UniqueReads], r.values[fastqc.DuplicateReads],
			r.values[fastqc.UniqueReadsM], r.values[fastqc.DuplicateReadsM],
		})
	}
	return wb.addSheet(fastqcSheet, fastqcHeader, rows)
}

// addFastQCPivot sums the million-scaled read counts per specimen and
// appends a grand-total row.
func (wb *Workbook) addFastQCPivot(metrics []fusion.QCMetric) error {
	type totals struct{ uniqueM, duplicateM float64 }
	bySpecimen := map[string]*totals{}
	var order []string
	for _, m := range metrics {
		t, ok := bySpecimen[m.Specimen]
		if !ok {
			t = &totals{}
			bySpecimen[m.Specimen] = t
			order = append(order, m.Specimen)
		}
		switch m.Name {
		case fastqc.UniqueReadsM:
			t.uniqueM += m.Value
		case fastqc.DuplicateReadsM:
			t.duplicateM += m.Value
		}
	}
	var grand totals
	rows := make([][]interface{}, 0, len(order)+1)
	for _, specimen := range order {
		t := bySpecimen[specimen]
		rows = append(rows, []interface{}{specimen, t.uniqueM, t.duplicateM})
		grand.uniqueM += t.uniqueM
		grand.duplicateM += t.duplicateM
	}
	rows = append(rows, []interface{}{"TOTAL", grand.uniqueM, grand.duplicateM})
	return wb.addSheet(pivotSheet, []string{"SPECIMEN", fastqc.UniqueReadsM, fastqc.DuplicateReadsM}, rows)
}

func (wb *Workbook) addPredictedSheet(historical map[fusion.Key]fusion.HistoricalObservation) error {
	obs := make([]fusion.HistoricalObservation, 0, len(historical))
	for _, o := range historical {
		obs = append(obs, o)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].ID.Name() < obs[j].ID.Name() })
	rows := make([][]interface{}, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, []interface{}{o.ID.Name(), o.Count})
	}
	return wb.addSheet(predictedSheet, []string{"#FusionName", "Count_predicted"}, rows)
}

var summaryHeader = []string{
	"SPECIMEN", "#FusionName",
	"LeftBreakpoint", "RightBreakpoint",
	"JunctionReadCount", "SpanningFragCount",
	"Count_predicted", "ReferenceSources", "PreviousPositives",
	"FRAME", "FFPM", "Sources",
	"Reported", "Oncogenicity",
}

func (wb *Workbook) addSummarySheet(summary []fusion.SummaryRow) error {
	rows := make([][]interface{}, 0, len(summary))
	for _, s := range summary {
		var sources string
		for i, src := range s.Sources {
			if i > 0 {
				sources += ","
			}
			sources += string(src)
		}
		rows = append(rows, []interface{}{
			s.Specimen, s.FusionName,
			s.LeftBreakpoint, s.RightBreakpoint,
			optInt(s.JunctionReads), optInt(s.SpanningReads),
			s.HistoricalCount, s.ReferenceSources, s.PreviousPositives,
			s.Frame, optFloat(s.FFPM), sources,
			nil, nil,
		})
	}
	if err := wb.addSheet(summarySheet, summaryHeader, rows); err != nil {
		return err
	}
	if len(summary) == 0 {
		return nil
	}
	if err := wb.addDropDown(summarySheet.name, "M", len(summary), reportedOptions,
		"Fusion reported or not?", "Choose Yes or No"); err != nil {
		return err
	}
	if err := wb.addDropDown(summarySheet.name, "N", len(summary), oncogenicityOptions,
		"Oncogenicity", "Select from the list"); err != nil {
		return err
	}
	return wb.addFFPMDataBars(summary)
}

func (wb *Workbook) addDropDown(sheet, col string, nRows int, options []string, title, prompt string) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s2:%s%d", col, col, nRows+1)
	if err := dv.SetDropList(options); err != nil {
		return err
	}
	dv.SetInput(title, prompt)
	return wb.f.AddDataValidation(sheet, dv)
}

// addFFPMDataBars adds a databar to the FFPM column, scaled per specimen
// so each specimen's strongest fusion fills its bar. Rows of one specimen
// are not necessarily contiguous, so the scale comes from a pass over the
// whole summary and each contiguous run gets its specimen's scale.
func (wb *Workbook) addFFPMDataBars(summary []fusion.SummaryRow) error {
	const col = "K" // FFPM column in summaryHeader
	maxBySpecimen := map[string]float64{}
	for _, s := range summary {
		if s.FFPM > maxBySpecimen[s.Specimen] {
			maxBySpecimen[s.Specimen] = s.FFPM
		}
	}
	start := 0
	for start < len(summary) {
		end := start
		for end+1 < len(summary) && summary[end+1].Specimen == summary[start].Specimen {
			end++
		}
		if max := maxBySpecimen[summary[start].Specimen]; max > 0 {
			ref := fmt.Sprintf("%s%d:%s%d", col, start+2, col, end+2)
			err := wb.f.SetConditionalFormat(summarySheet.name, ref, []excelize.ConditionalFormatOptions{{
				Type:     "data_bar",
				Criteria: "=",
				MinType:  "num",
				MinValue: "0",
				MaxType:  "num",
				MaxValue: strconv.FormatFloat(max, 'g', -1, 64),
				BarColor: "#00FF00",
			}})
			if err != nil {
				return err
			}
		}
		start = end + 1
	}
	return nil
}

func optInt(v int) interface{} {
	if v == fusion.Missing {
		return nil
	}
	return v
}

func optFloat(v float64) interface{} {
	if v < 0 {
		return nil
	}
	return v
}
