// Package csvfile writes detections to a flat CSV file.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/active-fire-etl/internal/domain"
	"github.com/couchcryptid/active-fire-etl/internal/observability"
)

// Writer replaces the file at path on every Load. It implements pipeline.Loader.
type Writer struct {
	path    string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a CSV loader for the given destination path.
func NewWriter(path string, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	return &Writer{path: path, metrics: metrics, logger: logger}
}

// Path returns the destination file path.
func (w *Writer) Path() string {
	return w.path
}

// Load creates the destination directory if needed, truncates the file, and
// writes the header followed by one row per detection. The header is written
// even when detections is empty. A failure part-way leaves a partial file.
func (w *Writer) Load(_ context.Context, detections []domain.Detection) error {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := Encode(f, detections); err != nil {
		f.Close() //nolint:errcheck // encode error takes precedence
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	w.metrics.RowsWritten.Add(float64(len(detections)))
	w.logger.Debug("csv written", "path", w.path, "rows", len(detections))
	return nil
}

// Encode writes the header and detections as CSV to out. Records end in
// "\r\n". Quoting follows encoding/csv, which also quotes a field that starts
// with a space.
func Encode(out io.Writer, detections []domain.Detection) error {
	cw := csv.NewWriter(out)
	cw.UseCRLF = true
	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false

	if err := enc.EncodeHeader(domain.Detection{}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range detections {
		if err := enc.Encode(detections[i]); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
