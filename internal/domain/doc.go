// Package domain models NASA FIRMS active-fire detections.
//
// # Data Source
//
// FIRMS (Fire Information for Resource Management System) publishes near
// real-time satellite fire detections as KML 2.2 documents, e.g. the 48-hour
// VIIRS feed for Europe:
//
//	https://firms.modaps.eosdis.nasa.gov/data/active_fire/noaa-21-viirs-c2/kml/J2_VIIRS_C2_Europe_animated_48h.kml
//
// Each detection is one Placemark in the namespace
// http://www.opengis.net/kml/2.2.
//
// # Placemark Conventions
//
// Coordinates:
//
//	"<lon>,<lat>[,<alt>]"  →  e.g. "-10.5,34.2,0"
//	Longitude first, as everywhere in KML. Altitude is discarded.
//	Values are carried through as the feed wrote them, never reformatted.
//
// Description:
//
//	An HTML fragment whose td cells alternate label and value:
//
//	  <td>Brightness</td><td>310.5</td><td>Acq Date</td><td>2024-08-01</td>
//
//	Labels use spaces ("Acq Date", "Bright T31"); the CSV header uses
//	underscores ("Acq_Date", "Bright_T31"). See [Columns].
//
// # Output
//
// Every [Detection] renders to exactly len([Columns]) fields. Labels missing from
// a description become empty strings, never errors.
//
// # Malformed Placemarks
//
//	missing coordinates/description   skipped  [ErrMissingCoordinates], [ErrMissingDescription]
//	fewer than 2 coordinate parts     skipped  [ErrCoordinateFormat]
//	odd td count                      kept     trailing cell dropped, [ErrUnpairedCell]
package domain
