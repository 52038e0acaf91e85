// Package parse holds the helpers shared by the per-tool source parsers:
// transparent file reading, header validation against each tool's required
// columns, and sample-name handling.
package parse

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"

	"github.com/eastgenomics/fusion-workbook/fusion"
)

// ReadFile reads the whole input at path, decompressing transparently when
// the path names a gzipped file.
func ReadFile(ctx context.Context, path string) ([]byte, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	data, err := io.ReadAll(r)
	if closeErr := in.Close(ctx); err == nil {
		err = closeErr
	}
	return data, err
}

// Header returns the column names of the first line of data.
func Header(data []byte, comma rune) []string {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	cols := strings.Split(strings.TrimRight(string(line), "\r"), string(comma))
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

// RequireColumns verifies that every required column appears in the header.
// A missing column is a schema mismatch between this parser and the tool
// version that produced the file, and aborts the run.
func RequireColumns(source fusion.Source, path string, header []string, required ...string) error {
	have := make(map[string]bool, len(header))
	for _, col := range header {
		have[col] = true
	}
	for _, col := range required {
		if !have[col] {
			return &fusion.SchemaError{Source: string(source), Path: path, Column: col}
		}
	}
	return nil
}

// NewReader returns a tsv.Reader over data that maps columns to struct
// fields by header name. Quoting is lazy: caller outputs embed bare double
// quotes in annotation columns (e.g. STAR-Fusion's annots JSON lists), and
// those must not invalidate the row.
func NewReader(data []byte, comma rune) *tsv.Reader {
	r := tsv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.LazyQuotes = true
	r.HasHeaderRow = true
	r.UseHeaderNames = true
	return r
}

// SpecimenID extracts the SP identifier from a sample or file name of form
// 12345678-2XXXXSXXX-25PCAN4-10011_S33_L001_R1, e.g. 2XXXXSXXX.
func SpecimenID(sample string) string {
	parts := strings.Split(sample, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// IGVName extracts the IGV-style sample prefix, the first three dashed
// segments of the sample name, e.g. 12345678-2XXXXSXXX-25PCAN4.
func IGVName(sample string) string {
	parts := strings.Split(sample, "-")
	if len(parts) < 3 {
		return sample
	}
	return strings.Join(parts[:3], "-")
}

// BaseName strips the directory from an input path; calls record only the
// file's base name.
func BaseName(path string) string {
	return filepath.Base(path)
}
