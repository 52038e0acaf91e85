package main

// This file defines recordWriter and recordReader. Type recordWriter dumps
// reconciled fusion records into a recordio file, and recordReader reads
// them back. The recordio file can be used to re-render workbooks without
// re-parsing the caller outputs.

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"

	"github.com/eastgenomics/fusion-workbook/fusion"
)

const (
	// <fileVersionHeader, fileVersion> is stored in a recordio header.
	fileVersionHeader = "fwbversion"
	fileVersion       = "FWB_V1"
)

// recordFileTrailer is stored in the trailer section of the recordio file.
type recordFileTrailer struct {
	// Opts is the list of options used to reconcile the records.
	Opts fusion.Opts
}

func encodeGOB(gw *gob.Encoder, v interface{}) {
	if err := gw.Encode(v); err != nil {
		panic(err)
	}
}

func decodeGOB(gr *gob.Decoder, v interface{}) {
	if err := gr.Decode(v); err != nil {
		panic(err)
	}
}

type recordWriter struct {
	out  file.File
	w    recordio.Writer
	opts fusion.Opts
}

func newRecordWriter(ctx context.Context, outPath string, opts fusion.Opts) *recordWriter {
	recordiozstd.Init()
	out, err := file.Create(ctx, outPath)
	if err != nil {
		log.Panicf("rio create %v: %v", outPath, err)
	}
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(fileVersionHeader, fileVersion)
	w.AddHeader(recordio.KeyTrailer, true)
	return &recordWriter{out: out, w: w, opts: opts}
}

// Write adds a fusion record. Any error will crash the process.
func (w *recordWriter) Write(rec fusion.FusionRecord) {
	b := bytes.NewBuffer(nil)
	gw := gob.NewEncoder(b)
	encodeGOB(gw, rec)
	w.w.Append(b.Bytes())
}

// Close closes the writer. It must be called exactly once, after writing
// all the records.
func (w *recordWriter) Close(ctx context.Context) {
	b := bytes.NewBuffer(nil)
	gw := gob.NewEncoder(b)
	encodeGOB(gw, recordFileTrailer{Opts: w.opts})
	w.w.SetTrailer(b.Bytes())
	if err := w.w.Finish(); err != nil {
		log.Panicf("rio close: %v", err)
	}
	if err := w.out.Close(ctx); err != nil {
		log.Panicf("rio close: %v", err)
	}
}

type recordReader struct {
	in   file.File
	r    recordio.Scanner
	opts fusion.Opts

	rec fusion.FusionRecord // last record read by Scan.
}

func newRecordReader(ctx context.Context, inPath string) *recordReader {
	in, err := file.Open(ctx, inPath)
	if err != nil {
		log.Panicf("rio open %s: %v", inPath, err)
	}
	recordiozstd.Init()
	r := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	versionFound := false
	for _, kv := range r.Header() {
		if kv.Key == fileVersionHeader {
			if kv.Value.(string) != fileVersion {
				log.Panicf("record file version mismatch, got %v, expect %v",
					kv.Value.(string), fileVersion)
			}
			versionFound = true
			break
		}
	}
	if !versionFound {
		log.Panic(fileVersionHeader + " not found")
	}
	gr := gob.NewDecoder(bytes.NewReader(r.Trailer()))
	h := recordFileTrailer{}
	decodeGOB(gr, &h)
	return &recordReader{in: in, r: r, opts: h.Opts}
}

// Opts returns the reconciliation options written in the recordio file.
// This method can be called any time.
func (r *recordReader) Opts() fusion.Opts { return r.opts }

// Scan reads the next fusion record.
//
// REQUIRES: Close hasn't been called.
func (r *recordReader) Scan() bool {
	if !r.r.Scan() {
		return false
	}
	gr := gob.NewDecoder(bytes.NewReader(r.r.Get().([]byte)))
	r.rec = fusion.FusionRecord{}
	decodeGOB(gr, &r.rec)
	return true
}

// Get yields the current record.
//
// REQUIRES: Last Scan call returned true.
func (r *recordReader) Get() fusion.FusionRecord { return r.rec }

// Close closes the reader. It must be called exactly once.
func (r *recordReader) Close(ctx context.Context) {
	if err := r.r.Err(); err != nil {
		log.Panic(err)
	}
	if err := r.in.Close(ctx); err != nil {
		log.Panic(err)
	}
}
