package parse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/eastgenomics/fusion-workbook/fusion"
)

func TestSpecimenID(t *testing.T) {
	expect.EQ(t, SpecimenID("12345678-25048S0999-25PCAN4-10011_S33_L001_R1"), "25048S0999")
	expect.EQ(t, SpecimenID("2504999-25048S0999-1.star-fusion.tsv"), "25048S0999")
	expect.EQ(t, SpecimenID("nodashes"), "")
}

func TestIGVName(t *testing.T) {
	expect.EQ(t, IGVName("12345678-25048S0999-25PCAN4-10011_S33_L001_R1"), "12345678-25048S0999-25PCAN4")
	expect.EQ(t, IGVName("a-b"), "a-b")
}

func TestHeader(t *testing.T) {
	expect.EQ(t, Header([]byte("A\tB\tC\nrow1\n"), '\t'), []string{"A", "B", "C"})
	expect.EQ(t, Header([]byte("A,B\r\nrow1\n"), ','), []string{"A", "B"})
	expect.EQ(t, Header([]byte("A\tB"), '\t'), []string{"A", "B"})
}

func TestRequireColumns(t *testing.T) {
	header := []string{"#FusionName", "JunctionReadCount"}
	expect.NoError(t, RequireColumns(fusion.StarFusion, "x.tsv", header, "#FusionName"))

	err := RequireColumns(fusion.StarFusion, "x.tsv", header, "#FusionName", "FFPM")
	expect.NotNil(t, err)
	schemaErr, ok := err.(*fusion.SchemaError)
	expect.True(t, ok)
	expect.EQ(t, schemaErr.Column, "FFPM")
	expect.EQ(t, schemaErr.Path, "x.tsv")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.tsv")
	expect.NoError(t, os.WriteFile(path, []byte("A\tB\n1\t2\n"), 0644))
	data, err := ReadFile(context.Background(), path)
	expect.NoError(t, err)
	expect.EQ(t, string(data), "A\tB\n1\t2\n")
}
