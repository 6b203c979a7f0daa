package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/claimoverlap/internal/logging"
	"github.com/ppiankov/claimoverlap/internal/metrics"
	"github.com/ppiankov/claimoverlap/internal/model"
	"github.com/rs/zerolog"
)

// CSVHeader returns the header row for a claim's mapping file
func CSVHeader(claimName string) []string {
	return []string{"ROR ID", "Wikidata ID", claimName}
}

// MappingFileName returns the output file name for a claim
func MappingFileName(claimName string) string {
	return claimName + "_mapping.csv"
}

// OutputFile describes one written mapping file
type OutputFile struct {
	Claim model.Claim
	Path  string
	Rows  int
}

// Renderer writes the merged records as per-claim CSV files
type Renderer struct {
	logger zerolog.Logger
}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{logger: logging.NewLogger("renderer")}
}

// WriteCSVFiles writes one file per claim into dir, creating dir if needed.
// Only records with a non-empty value for the claim produce a row.
func (r *Renderer) WriteCSVFiles(agg *model.Aggregate, dir string, spec model.ClaimSpec) ([]OutputFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := make([]OutputFile, 0, len(spec))
	for _, c := range spec {
		path := filepath.Join(dir, MappingFileName(c.Name))

		rows, err := r.writeClaimCSV(path, agg, c.Name)
		if err != nil {
			return files, fmt.Errorf("write %s: %w", path, err)
		}

		metrics.RowsWritten.WithLabelValues(c.Name).Add(float64(rows))
		r.logger.Info().
			Str("file", path).
			Str("rows", humanize.Comma(int64(rows))).
			Msg("Generated CSV file")

		files = append(files, OutputFile{Claim: c, Path: path, Rows: rows})
	}

	return files, nil
}

// writeClaimCSV writes a single mapping file and returns the data row count
func (r *Renderer) writeClaimCSV(path string, agg *model.Aggregate, claimName string) (rows int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader(claimName)); err != nil {
		return 0, err
	}

	agg.Each(func(rorID string, rec model.Record) {
		if err != nil {
			return
		}
		value, ok := rec.Value(claimName)
		if !ok {
			return
		}
		if err = w.Write([]string{rorID, rec.WikidataID, value}); err == nil {
			rows++
		}
	})
	if err != nil {
		return rows, err
	}

	w.Flush()
	return rows, w.Error()
}
