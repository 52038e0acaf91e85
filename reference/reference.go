// Package reference loads the static knowledge bases the reconciler
// annotates against: the curated fusion database, the historical calls
// from prior runs, and the laboratory's previously-reported-positives
// list. Each loader is idempotent and side-effect-free; its output is
// treated as immutable for the remainder of the run.
package reference

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/eastgenomics/fusion-workbook/fusion"
	"github.com/eastgenomics/fusion-workbook/parse"
)

const (
	sourceReference  = "reference"
	sourceHistorical = "historical"
	sourcePositives  = "previous-positives"
)

type referenceRow struct {
	Fusion  string `tsv:"Fusion"`
	Sources string `tsv:"ReferenceSources"`
}

// LoadReference reads the curated reference TSV into an identity-keyed
// lookup. Fusion names use either "::" or "--" separators; provenance
// labels are comma-joined in the ReferenceSources column. Multiple rows
// for one fusion accumulate as separate entries.
func LoadReference(ctx context.Context, path string) (map[fusion.Key][]fusion.ReferenceEntry, error) {
	data, err := parse.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reference %s", path)
	}
	if err := parse.RequireColumns(sourceReference, path, parse.Header(data, '\t'), "Fusion", "ReferenceSources"); err != nil {
		return nil, err
	}
	out := map[fusion.Key][]fusion.ReferenceEntry{}
	r := parse.NewReader(data, '\t')
	for {
		var rec referenceRow
		if err := r.Read(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "reference %s", path)
		}
		id, err := parseIdentity(rec.Fusion)
		if err != nil {
			log.Error.Printf("reference %s: skipping %q: %v", path, rec.Fusion, err)
			continue
		}
		var labels []string
		for _, s := range strings.Split(rec.Sources, ",") {
			if s = strings.TrimSpace(s); s != "" {
				labels = append(labels, s)
			}
		}
		out[id.Key()] = append(out[id.Key()], fusion.ReferenceEntry{ID: id, Sources: labels})
	}
	log.Printf("Loaded %d curated fusions from %s", len(out), path)
	return out, nil
}

// countColumns are the accepted names for the historical predicted-count
// column, preferred order first. The legacy name predates the renaming
// done when the run range stopped being part of the column.
var countColumns = []string{"Count_predicted", "Count_Run_1_Run_20_predicted"}

type historicalRow struct {
	FusionName string `tsv:"#FusionName"`
	Count      string `tsv:"Count_predicted"`
}

type legacyHistoricalRow struct {
	FusionName string `tsv:"#FusionName"`
	Count      string `tsv:"Count_Run_1_Run_20_predicted"`
}

// LoadHistorical reads the prior-run calls TSV into an identity-keyed
// lookup of occurrence counts. Duplicate fusion names keep the maximum
// count.
func LoadHistorical(ctx context.Context, path string) (map[fusion.Key]fusion.HistoricalObservation, error) {
	data, err := parse.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "historical %s", path)
	}
	header := parse.Header(data, '\t')
	if err := parse.RequireColumns(sourceHistorical, path, header, "#FusionName"); err != nil {
		return nil, err
	}
	countCol := ""
	for _, col := range countColumns {
		if parse.RequireColumns(sourceHistorical, path, header, col) == nil {
			countCol = col
			break
		}
	}
	if countCol == "" {
		return nil, &fusion.SchemaError{Source: sourceHistorical, Path: path, Column: countColumns[0]}
	}

	out := map[fusion.Key]fusion.HistoricalObservation{}
	r := parse.NewReader(data, '\t')
	for {
		var name, count string
		if countCol == countColumns[0] {
			var rec historicalRow
			if err := r.Read(&rec); err != nil {
				if err == io.EOF {
					break
				}
				return nil, errors.Wrapf(err, "historical %s", path)
			}
			name, count = rec.FusionName, rec.Count
		} else {
			var rec legacyHistoricalRow
			if err := r.Read(&rec); err != nil {
				if err == io.EOF {
					break
				}
				return nil, errors.Wrapf(err, "historical %s", path)
			}
			name, count = rec.FusionName, rec.Count
		}
		id, err := parseIdentity(name)
		if err != nil {
			log.Error.Printf("historical %s: skipping %q: %v", path, name, err)
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			log.Error.Printf("historical %s: skipping %q: count %q not a number", path, name, count)
			continue
		}
		if obs, ok := out[id.Key()]; !ok || n > obs.Count {
			out[id.Key()] = fusion.HistoricalObservation{ID: id, Count: n}
		}
	}
	log.Printf("Loaded %d historical fusions from %s", len(out), path)
	return out, nil
}

type positiveRow struct {
	Fusion   string `tsv:"Fusion"`
	Specimen string `tsv:"Specimen ID"`
}

// LoadPositives reads the previously-reported-positives CSV into an
// identity-keyed lookup. Specimens reported for one fusion across several
// rows accumulate, deduplicated and sorted.
func LoadPositives(ctx context.Context, path string) (map[fusion.Key]fusion.PositiveEntry, error) {
	data, err := parse.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "positives %s", path)
	}
	if err := parse.RequireColumns(sourcePositives, path, parse.Header(data, ','), "Fusion", "Specimen ID"); err != nil {
		return nil, err
	}
	specimens := map[fusion.Key]map[string]bool{}
	ids := map[fusion.Key]fusion.Identity{}
	r := parse.NewReader(data, ',')
	for {
		var rec positiveRow
		if err := r.Read(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "positives %s", path)
		}
		id, err := parseIdentity(rec.Fusion)
		if err != nil {
			log.Error.Printf("positives %s: skipping %q: %v", path, rec.Fusion, err)
			continue
		}
		k := id.Key()
		if specimens[k] == nil {
			specimens[k] = map[string]bool{}
			ids[k] = id
		}
		if s := strings.TrimSpace(rec.Specimen); s != "" {
			specimens[k][s] = true
		}
	}
	out := make(map[fusion.Key]fusion.PositiveEntry, len(specimens))
	for k, set := range specimens {
		var list []string
		for s := range set {
			list = append(list, s)
		}
		sort.Strings(list)
		out[k] = fusion.PositiveEntry{ID: ids[k], Specimens: list}
	}
	log.Printf("Loaded %d previously reported fusions from %s", len(out), path)
	return out, nil
}

func parseIdentity(name string) (fusion.Identity, error) {
	geneA, geneB, err := fusion.ParseFusionName(name)
	if err != nil {
		return fusion.Identity{}, err
	}
	return fusion.NewIdentity(geneA, geneB, nil, nil)
}
