// Command validate checks a converted CSV file for structural integrity and,
// optionally, that it matches a fresh extraction of a local KML snapshot.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv modis_csv_data/viirs_active_fires.csv \
//	  -kml J2_VIIRS_C2_Europe_animated_48h.kml
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/couchcryptid/active-fire-etl/internal/adapter/kml"
	"github.com/couchcryptid/active-fire-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the converted CSV file")
	kmlPath := flag.String("kml", "", "optional KML snapshot the CSV was produced from")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *kmlPath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, kmlPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== Active Fire CSV Validation ===")
	fmt.Fprintln(out)

	records, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load CSV: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "FATAL: CSV is empty, expected at least a header row")
		return 1
	}
	header, rows := records[0], records[1:]

	phases := []*phase{
		validateHeader(header),
		validateRowWidth(rows),
		validateCoordinates(rows),
	}

	if kmlPath != "" {
		expected, err := extractKML(kmlPath)
		if err != nil {
			fmt.Fprintf(out, "FATAL: load KML: %v\n", err)
			return 1
		}
		phases = append(phases, validateAgainstFeed(rows, expected))
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-30s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d\n", len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// loadCSV reads every record, tolerating uneven widths so they can be reported.
func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// extractKML runs the domain extraction over a local KML file and returns the
// rows a conversion should have produced.
func extractKML(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	placemarks, err := kml.Decode(f)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(placemarks))
	for _, pm := range placemarks {
		d, err := domain.BuildDetection(pm)
		if keep, _ := domain.Classify(err); !keep {
			continue
		}
		rows = append(rows, d.Row())
	}
	return rows, nil
}

func validateHeader(header []string) *phase {
	p := &phase{name: "Header"}
	if !slices.Equal(header, domain.Columns) {
		p.errorf("header %q, want %q", header, domain.Columns)
	}
	return p
}

func validateRowWidth(rows [][]string) *phase {
	p := &phase{name: "Row width"}
	for i, row := range rows {
		if len(row) != len(domain.Columns) {
			p.errorf("line %d: %d fields, want %d", i+2, len(row), len(domain.Columns))
		}
	}
	return p
}

func validateCoordinates(rows [][]string) *phase {
	p := &phase{name: "Coordinates present"}
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		if row[0] == "" || row[1] == "" {
			p.errorf("line %d: empty latitude or longitude", i+2)
		}
	}
	return p
}

func validateAgainstFeed(rows, expected [][]string) *phase {
	p := &phase{name: "Matches KML extraction"}
	if len(rows) != len(expected) {
		p.errorf("row count %d, KML yields %d", len(rows), len(expected))
	}
	for i := 0; i < min(len(rows), len(expected)); i++ {
		if !slices.Equal(rows[i], expected[i]) {
			p.errorf("line %d: got %q, want %q", i+2, rows[i], expected[i])
		}
	}
	return p
}
