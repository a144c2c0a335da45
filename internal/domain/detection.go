package domain

import (
	"errors"
	"time"
)

// KMLNamespace is the XML namespace every matched KML element must carry.
const KMLNamespace = "http://www.opengis.net/kml/2.2"

var (
	// ErrMissingCoordinates marks a placemark with no usable coordinates element.
	ErrMissingCoordinates = errors.New("placemark has no coordinates")

	// ErrMissingDescription marks a placemark with no usable description element.
	ErrMissingDescription = errors.New("placemark has no description")

	// ErrCoordinateFormat marks coordinate text with fewer than two components.
	ErrCoordinateFormat = errors.New("unexpected coordinate format")

	// ErrUnpairedCell marks a description table with an odd number of cells.
	// The dangling cell is dropped; the pairs before it are still usable.
	ErrUnpairedCell = errors.New("description table has an unpaired trailing cell")
)

// Placemark is one KML Placemark as seen during document traversal.
// Both text fields are whitespace-trimmed.
type Placemark struct {
	Description    string
	Coordinates    string
	HasDescription bool
	HasCoordinates bool
}

// AttributeTable maps description labels (e.g. "Acq Date") to their values.
type AttributeTable map[string]string

// Get returns the value stored under key, or def when the key is absent.
func (t AttributeTable) Get(key, def string) string {
	if v, ok := t[key]; ok {
		return v
	}
	return def
}

// Detection is one output row. Field order is the CSV column order.
type Detection struct {
	Latitude   string `csv:"Latitude" json:"latitude"`
	Longitude  string `csv:"Longitude" json:"longitude"`
	Brightness string `csv:"Brightness" json:"brightness"`
	Scan       string `csv:"Scan" json:"scan"`
	Track      string `csv:"Track" json:"track"`
	AcqDate    string `csv:"Acq_Date" json:"acq_date"`
	AcqTime    string `csv:"Acq_Time" json:"acq_time"`
	Satellite  string `csv:"Satellite" json:"satellite"`
	Confidence string `csv:"Confidence" json:"confidence"`
	Version    string `csv:"Version" json:"version"`
	BrightT31  string `csv:"Bright_T31" json:"bright_t31"`
	FRP        string `csv:"FRP" json:"frp"`
	DayNight   string `csv:"DayNight" json:"day_night"`

	ProcessedAt time.Time `csv:"-" json:"processed_at"`
}

// Columns is the CSV header, in output order.
var Columns = []string{
	"Latitude", "Longitude", "Brightness", "Scan", "Track", "Acq_Date",
	"Acq_Time", "Satellite", "Confidence", "Version", "Bright_T31",
	"FRP", "DayNight",
}

// Row returns the detection's CSV fields in Columns order. It always has
// len(Columns) entries.
func (d Detection) Row() []string {
	return []string{
		d.Latitude, d.Longitude, d.Brightness, d.Scan, d.Track, d.AcqDate,
		d.AcqTime, d.Satellite, d.Confidence, d.Version, d.BrightT31,
		d.FRP, d.DayNight,
	}
}

// Key identifies a detection by position and acquisition time.
func (d Detection) Key() string {
	return d.Latitude + "," + d.Longitude + "|" + d.AcqDate + "|" + d.AcqTime
}
