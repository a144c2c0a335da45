// Command genmock reads a FIRMS KML snapshot and regenerates the test fixtures
// derived from it: the golden CSV and the JSON messages the Kafka loader would
// publish. It uses the actual domain package so the fixtures match real
// pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -kml internal/pipeline/testdata/firms_sample.kml \
//	  -csv-out internal/pipeline/testdata/firms_sample.csv \
//	  -json-out data/mock/firms_sample_detections.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/active-fire-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/active-fire-etl/internal/adapter/kml"
	"github.com/couchcryptid/active-fire-etl/internal/domain"
)

// processedAt is stamped on every generated detection for reproducible output.
var processedAt = time.Date(2024, time.August, 1, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	kmlPath := flag.String("kml", "", "path to a FIRMS KML snapshot")
	csvOut := flag.String("csv-out", "", "output path for the golden CSV fixture")
	jsonOut := flag.String("json-out", "", "optional output path for the JSON detections fixture")
	flag.Parse()

	if *kmlPath == "" || *csvOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -kml, -csv-out")
	}

	domain.SetClock(clockwork.NewFakeClockAt(processedAt))
	defer domain.SetClock(nil)

	f, err := os.Open(*kmlPath)
	if err != nil {
		return fmt.Errorf("open kml: %w", err)
	}
	defer f.Close()

	res, err := generate(f)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *kmlPath, err)
	}
	log.Printf("placemarks: %d, rows: %d, skipped: %d", res.placemarks, len(res.detections), len(res.skipped))

	if err := writeCSV(*csvOut, res.detections); err != nil {
		return fmt.Errorf("writing CSV fixture: %w", err)
	}
	log.Printf("wrote CSV fixture: %s", *csvOut)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, res.detections); err != nil {
			return fmt.Errorf("writing JSON fixture: %w", err)
		}
		log.Printf("wrote JSON fixture: %s", *jsonOut)
	}

	printStats(os.Stdout, res)
	return nil
}

type result struct {
	placemarks int
	detections []domain.Detection
	unpaired   int
	skipped    map[int]error
}

// generate applies the same per-placemark rules as the pipeline.
func generate(r io.Reader) (result, error) {
	placemarks, err := kml.Decode(r)
	if err != nil {
		return result{}, err
	}

	res := result{placemarks: len(placemarks), skipped: map[int]error{}}
	for i, pm := range placemarks {
		d, err := domain.BuildDetection(pm)
		keep, unpaired := domain.Classify(err)
		if !keep {
			res.skipped[i] = err
			continue
		}
		if unpaired {
			res.unpaired++
		}
		res.detections = append(res.detections, d)
	}
	return res, nil
}

func writeCSV(path string, detections []domain.Detection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := csvfile.Encode(&buf, detections); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type count struct {
	key string
	n   int
}

func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

func printStats(w io.Writer, res result) {
	satellites := map[string]int{}
	dayNight := map[string]int{}
	for i := range res.detections {
		d := &res.detections[i]
		satellites[d.Satellite]++
		dayNight[d.DayNight]++
	}

	fmt.Fprintln(w, "\n=== Stats for updating test assertions ===")
	fmt.Fprintf(w, "Placemarks: %d\n", res.placemarks)
	fmt.Fprintf(w, "Rows: %d\n", len(res.detections))
	fmt.Fprintf(w, "Unpaired cells: %d\n", res.unpaired)
	fmt.Fprintf(w, "Skipped: %d\n", len(res.skipped))

	idx := make([]int, 0, len(res.skipped))
	for i := range res.skipped {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		fmt.Fprintf(w, "  placemark %d: %v\n", i, res.skipped[i])
	}

	fmt.Fprint(w, "By satellite:")
	for _, c := range sortedCounts(satellites) {
		fmt.Fprintf(w, " %q=%d", c.key, c.n)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "By day/night:")
	for _, c := range sortedCounts(dayNight) {
		fmt.Fprintf(w, " %q=%d", c.key, c.n)
	}
	fmt.Fprintln(w)
}
