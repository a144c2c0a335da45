package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Description labels as they appear in the FIRMS feed. They must match the
// feed's spelling exactly, spaces included.
const (
	labelBrightness = "Brightness"
	labelScan       = "Scan"
	labelTrack      = "Track"
	labelAcqDate    = "Acq Date"
	labelAcqTime    = "Acq Time"
	labelSatellite  = "Satellite"
	labelConfidence = "Confidence"
	labelVersion    = "Version"
	labelBrightT31  = "Bright T31"
	labelFRP        = "FRP"
	labelDayNight   = "DayNight"
)

// ParseCoordinates splits KML coordinate text ("lon,lat[,alt]") and returns the
// latitude and longitude components verbatim. Altitude is discarded.
func ParseCoordinates(text string) (lat, lon string, err error) {
	parts := strings.Split(text, ",")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %s", ErrCoordinateFormat, text)
	}
	return parts[1], parts[0], nil
}

// BuildDetection turns a placemark into an output row.
//
// A placemark without coordinates or description, or with fewer than two
// coordinate components, yields an error and no row. When the description
// table has an unpaired trailing cell the returned Detection is still valid and
// the error wraps ErrUnpairedCell; callers should treat that case as a warning.
func BuildDetection(p Placemark) (Detection, error) {
	if !p.HasCoordinates || p.Coordinates == "" {
		return Detection{}, ErrMissingCoordinates
	}
	if !p.HasDescription || p.Description == "" {
		return Detection{}, ErrMissingDescription
	}

	lat, lon, err := ParseCoordinates(p.Coordinates)
	if err != nil {
		return Detection{}, err
	}

	attrs, scrapeErr := ScrapeAttributes(p.Description)
	if scrapeErr != nil && !errors.Is(scrapeErr, ErrUnpairedCell) {
		return Detection{}, scrapeErr
	}

	d := newDetection(lat, lon, attrs)
	d.ProcessedAt = clock.Now()
	return d, scrapeErr
}

func newDetection(lat, lon string, attrs AttributeTable) Detection {
	return Detection{
		Latitude:   lat,
		Longitude:  lon,
		Brightness: attrs.Get(labelBrightness, ""),
		Scan:       attrs.Get(labelScan, ""),
		Track:      attrs.Get(labelTrack, ""),
		AcqDate:    attrs.Get(labelAcqDate, ""),
		AcqTime:    attrs.Get(labelAcqTime, ""),
		Satellite:  attrs.Get(labelSatellite, ""),
		Confidence: attrs.Get(labelConfidence, ""),
		Version:    attrs.Get(labelVersion, ""),
		BrightT31:  attrs.Get(labelBrightT31, ""),
		FRP:        attrs.Get(labelFRP, ""),
		DayNight:   attrs.Get(labelDayNight, ""),
	}
}

// Classify reports what to do with the result of BuildDetection. keep is true
// when the detection belongs in the output; unpaired is true when it was kept
// with a dangling description cell dropped.
func Classify(err error) (keep, unpaired bool) {
	switch {
	case err == nil:
		return true, false
	case errors.Is(err, ErrUnpairedCell):
		return true, true
	default:
		return false, false
	}
}
