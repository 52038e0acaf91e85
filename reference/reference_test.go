package reference

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastgenomics/fusion-workbook/fusion"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func keyFor(t *testing.T, geneA, geneB string) fusion.Key {
	t.Helper()
	id, err := fusion.NewIdentity(geneA, geneB, nil, nil)
	require.NoError(t, err)
	return id.Key()
}

func TestLoadReference(t *testing.T) {
	path := writeFixture(t, "reference.tsv",
		"Fusion\tReferenceSources\n"+
			"BCR::ABL1\tCOSMIC,Mitelman\n"+
			"EML4--ALK\tCOSMIC\n"+
			"ABL1::BCR\tChimerDB\n")
	ref, err := LoadReference(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, len(ref))

	// Both orderings of the pair land under one key, as separate entries.
	entries := ref[keyFor(t, "BCR", "ABL1")]
	require.Equal(t, 2, len(entries))
	assert.Equal(t, []string{"COSMIC", "Mitelman"}, entries[0].Sources)
	assert.Equal(t, []string{"ChimerDB"}, entries[1].Sources)
	assert.Equal(t, "ABL1--BCR", entries[0].ID.Name())

	entries = ref[keyFor(t, "EML4", "ALK")]
	require.Equal(t, 1, len(entries))
	assert.Equal(t, []string{"COSMIC"}, entries[0].Sources)
}

func TestLoadReferenceSkipsMalformedNames(t *testing.T) {
	path := writeFixture(t, "reference.tsv",
		"Fusion\tReferenceSources\n"+
			"NOTAFUSION\tCOSMIC\n"+
			"BCR::ABL1\tCOSMIC\n")
	ref, err := LoadReference(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, len(ref))
}

func TestLoadReferenceSchemaError(t *testing.T) {
	path := writeFixture(t, "reference.tsv", "Fusion\tNotes\nBCR::ABL1\tx\n")
	_, err := LoadReference(context.Background(), path)
	var schemaErr *fusion.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "ReferenceSources", schemaErr.Column)
}

func TestLoadHistorical(t *testing.T) {
	path := writeFixture(t, "historical.tsv",
		"#FusionName\tCount_predicted\n"+
			"BCR--ABL1\t3\n"+
			"ABL1--BCR\t5\n"+
			"EML4--ALK\t1\n")
	hist, err := LoadHistorical(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, len(hist))
	// Duplicate names keep the maximum count.
	assert.Equal(t, 5, hist[keyFor(t, "BCR", "ABL1")].Count)
	assert.Equal(t, 1, hist[keyFor(t, "EML4", "ALK")].Count)
}

func TestLoadHistoricalLegacyColumn(t *testing.T) {
	path := writeFixture(t, "historical.tsv",
		"#FusionName\tCount_Run_1_Run_20_predicted\n"+
			"BCR--ABL1\t7\n")
	hist, err := LoadHistorical(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 7, hist[keyFor(t, "BCR", "ABL1")].Count)
}

func TestLoadHistoricalSchemaError(t *testing.T) {
	path := writeFixture(t, "historical.tsv",
		"#FusionName\tCount_other\nBCR--ABL1\t3\n")
	_, err := LoadHistorical(context.Background(), path)
	var schemaErr *fusion.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Count_predicted", schemaErr.Column)
}

func TestLoadPositives(t *testing.T) {
	path := writeFixture(t, "positives.csv",
		"Fusion,Specimen ID\n"+
			"BCR::ABL1,25048S0002\n"+
			"BCR::ABL1,25048S0001\n"+
			"BCR::ABL1,25048S0002\n"+
			"EML4::ALK,25048S0003\n")
	pos, err := LoadPositives(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, len(pos))
	// Specimens deduplicate and sort.
	assert.Equal(t, []string{"25048S0001", "25048S0002"}, pos[keyFor(t, "BCR", "ABL1")].Specimens)
	assert.Equal(t, []string{"25048S0003"}, pos[keyFor(t, "EML4", "ALK")].Specimens)
}
