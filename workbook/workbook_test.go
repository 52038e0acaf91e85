package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eastgenomics/fusion-workbook/fusion"
	"github.com/eastgenomics/fusion-workbook/parse/fastqc"
)

func testIdentity(t *testing.T, geneA, geneB string) fusion.Identity {
	t.Helper()
	id, err := fusion.NewIdentity(geneA, geneB, nil, nil)
	require.NoError(t, err)
	return id
}

func TestWrite(t *testing.T) {
	id := testIdentity(t, "BCR", "ABL1")
	calls := map[fusion.Source][]fusion.FusionCall{
		fusion.StarFusion: {{
			ID:              id,
			Source:          fusion.StarFusion,
			File:            "2504999-25048S0999-1.star-fusion.tsv",
			Specimen:        "25048S0999",
			JunctionReads:   12,
			SpanningReads:   4,
			DiscordantMates: fusion.Missing,
			FFPM:            0.35,
		}},
	}
	metrics := []fusion.QCMetric{
		{Sample: "2504999-25048S0999-1_R1", Specimen: "25048S0999", Name: fastqc.TotalSequences, Value: 1000000},
		{Sample: "2504999-25048S0999-1_R1", Specimen: "25048S0999", Name: fastqc.UniqueReads, Value: 800000},
		{Sample: "2504999-25048S0999-1_R1", Specimen: "25048S0999", Name: fastqc.DuplicateReads, Value: 200000},
		{Sample: "2504999-25048S0999-1_R1", Specimen: "25048S0999", Name: fastqc.UniqueReadsM, Value: 0.8},
		{Sample: "2504999-25048S0999-1_R1", Specimen: "25048S0999", Name: fastqc.DuplicateReadsM, Value: 0.2},
	}
	historical := map[fusion.Key]fusion.HistoricalObservation{
		id.Key(): {ID: id, Count: 3},
	}
	records := []fusion.FusionRecord{{
		ID:              id,
		Calls:           map[fusion.Source][]fusion.FusionCall{fusion.StarFusion: calls[fusion.StarFusion]},
		HistoricalCount: 3,
	}}
	rows := fusion.Summarize(records)
	require.Equal(t, 1, len(rows))

	path := filepath.Join(t.TempDir(), "TEST"+Suffix)
	require.NoError(t, Write(path, calls, metrics, historical, rows))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"STAR-Fusion", "Fusion_Inspector", "Arriba", "FastQC", "FastQC_Pivot", "Predicted", "Summary"},
		f.GetSheetList())

	name, err := f.GetCellValue("STAR-Fusion", "C2")
	require.NoError(t, err)
	assert.Equal(t, "ABL1--BCR", name)

	count, err := f.GetCellValue("Predicted", "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", count)

	specimen, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "25048S0999", specimen)

	// Last pivot row is the grand total.
	total, err := f.GetCellValue("FastQC_Pivot", "A3")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", total)
}

// A specimen whose rows are not adjacent in the summary still gets one
// databar scale, taken over all of its rows.
func TestFFPMDataBarsSplitSpecimen(t *testing.T) {
	rows := []fusion.SummaryRow{
		{Specimen: "25048S0001", FusionName: "A1--B1", FFPM: 1.0},
		{Specimen: "25048S0002", FusionName: "A2--B2", FFPM: 9.0},
		{Specimen: "25048S0001", FusionName: "A3--B3", FFPM: 5.0},
	}
	path := filepath.Join(t.TempDir(), "SPLIT"+Suffix)
	require.NoError(t, Write(path, nil, nil, nil, rows))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	formats, err := f.GetConditionalFormats("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, formats["K2:K2"])
	require.NotEmpty(t, formats["K3:K3"])
	require.NotEmpty(t, formats["K4:K4"])
	assert.Equal(t, "5", formats["K2:K2"][0].MaxValue)
	assert.Equal(t, "9", formats["K3:K3"][0].MaxValue)
	assert.Equal(t, "5", formats["K4:K4"][0].MaxValue)
}

func TestWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EMPTY"+Suffix)
	require.NoError(t, Write(path, nil, nil, nil, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 7)
}
