// Package kml decodes Placemarks from KML 2.2 documents.
package kml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/couchcryptid/active-fire-etl/internal/domain"
)

// textElement captures the character data (CDATA included) of one element.
type textElement struct {
	Text string `xml:",chardata"`
}

// Decode reads a whole KML document and returns every Placemark in the
// domain.KMLNamespace namespace, at any depth, in document order.
//
// Any XML syntax error fails the whole decode; no partial result is returned.
// The document must have exactly one root element and no text outside it.
func Decode(r io.Reader) ([]domain.Placemark, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	placemarks := []domain.Placemark{}
	depth := 0
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !sawRoot {
				return nil, errors.New("kml: no root element")
			}
			return placemarks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("kml: read token: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if sawRoot {
					return nil, fmt.Errorf("kml: element %q after root element", el.Name.Local)
				}
				sawRoot = true
			}
			if !isKML(el.Name, "Placemark") {
				depth++
				continue
			}
			pm, err := decodePlacemark(dec)
			if err != nil {
				return nil, err
			}
			placemarks = append(placemarks, pm)
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(el)) > 0 {
				return nil, errors.New("kml: text outside root element")
			}
		}
	}
}

// decodePlacemark consumes tokens up to and including the Placemark's end
// element. It takes the direct-child description and the first coordinates
// element found at any depth.
func decodePlacemark(dec *xml.Decoder) (domain.Placemark, error) {
	var pm domain.Placemark
	depth := 1

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return domain.Placemark{}, fmt.Errorf("kml: read placemark: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case depth == 1 && !pm.HasDescription && isKML(el.Name, "description"):
				text, err := decodeText(dec, &el)
				if err != nil {
					return domain.Placemark{}, err
				}
				pm.Description, pm.HasDescription = text, true
			case !pm.HasCoordinates && isKML(el.Name, "coordinates"):
				text, err := decodeText(dec, &el)
				if err != nil {
					return domain.Placemark{}, err
				}
				pm.Coordinates, pm.HasCoordinates = text, true
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}

	return pm, nil
}

func decodeText(dec *xml.Decoder, start *xml.StartElement) (string, error) {
	var el textElement
	if err := dec.DecodeElement(&el, start); err != nil {
		return "", fmt.Errorf("kml: decode %s: %w", start.Name.Local, err)
	}
	return strings.TrimSpace(el.Text), nil
}

func isKML(name xml.Name, local string) bool {
	return name.Space == domain.KMLNamespace && name.Local == local
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("kml: unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
