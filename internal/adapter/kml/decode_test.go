package kml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/active-fire-etl/internal/domain"
)

const feedDoc = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
  <name>J2_VIIRS_C2_Europe_animated_48h</name>
  <Folder>
    <Placemark>
      <name>fire 1</name>
      <description><![CDATA[<table><tr><td>Brightness</td><td>310.5</td></tr></table>]]></description>
      <Point>
        <coordinates>
          -10.5,34.2,0
        </coordinates>
      </Point>
    </Placemark>
    <Placemark>
      <description>&lt;td&gt;FRP&lt;/td&gt;&lt;td&gt;4.2&lt;/td&gt;</description>
      <MultiGeometry>
        <Point><coordinates>23.1,38.0</coordinates></Point>
        <Point><coordinates>99,99</coordinates></Point>
      </MultiGeometry>
    </Placemark>
  </Folder>
</Document>
</kml>`

func TestDecode_FeedDocument(t *testing.T) {
	pms, err := Decode(strings.NewReader(feedDoc))
	require.NoError(t, err)
	require.Len(t, pms, 2)

	assert.Equal(t, domain.Placemark{
		Description:    "<table><tr><td>Brightness</td><td>310.5</td></tr></table>",
		Coordinates:    "-10.5,34.2,0",
		HasDescription: true,
		HasCoordinates: true,
	}, pms[0])

	assert.Equal(t, "<td>FRP</td><td>4.2</td>", pms[1].Description)
	assert.Equal(t, "23.1,38.0", pms[1].Coordinates, "first descendant coordinates wins")
}

func TestDecode_NoPlacemarks(t *testing.T) {
	pms, err := Decode(strings.NewReader(`<kml xmlns="http://www.opengis.net/kml/2.2"><Document/></kml>`))
	require.NoError(t, err)
	assert.Empty(t, pms)
	assert.NotNil(t, pms)
}

func TestDecode_IgnoresOtherNamespaces(t *testing.T) {
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:x="urn:other">
  <x:Placemark><x:coordinates>1,2</x:coordinates></x:Placemark>
  <Placemark>
    <x:description>foreign</x:description>
    <coordinates>3,4</coordinates>
  </Placemark>
</kml>`
	pms, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, "3,4", pms[0].Coordinates)
	assert.False(t, pms[0].HasDescription)
}

func TestDecode_UnnamespacedDocument(t *testing.T) {
	pms, err := Decode(strings.NewReader(`<kml><Placemark><coordinates>1,2</coordinates></Placemark></kml>`))
	require.NoError(t, err)
	assert.Empty(t, pms)
}

func TestDecode_NestedDescriptionNotTaken(t *testing.T) {
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark>
  <ExtendedData><description>nested</description></ExtendedData>
  <Point><coordinates>1,2</coordinates></Point>
</Placemark></kml>`
	pms, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.False(t, pms[0].HasDescription)
	assert.True(t, pms[0].HasCoordinates)
}

func TestDecode_EmptyElements(t *testing.T) {
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark>
  <description>   </description><Point><coordinates/></Point>
</Placemark></kml>`
	pms, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.True(t, pms[0].HasDescription)
	assert.Empty(t, pms[0].Description)
	assert.True(t, pms[0].HasCoordinates)
	assert.Empty(t, pms[0].Coordinates)
}

func TestDecode_Malformed(t *testing.T) {
	tests := map[string]string{
		"mismatched tag":  `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark></Point></kml>`,
		"truncated":       `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark><coordinates>1,2`,
		"not xml":         `this is not xml <<<`,
		"truncated outer": `<kml xmlns="http://www.opengis.net/kml/2.2"><Document>`,
		"empty":           ``,
		"whitespace only": "  \n\t",
		"prolog only":     `<?xml version="1.0" encoding="UTF-8"?>`,
		"text only":       `Service temporarily unavailable`,
		"text after root": `<kml xmlns="http://www.opengis.net/kml/2.2"/>trailing`,
		"two roots":       `<kml xmlns="http://www.opengis.net/kml/2.2"/><kml xmlns="http://www.opengis.net/kml/2.2"/>`,
		"placemark roots": `<Placemark xmlns="http://www.opengis.net/kml/2.2"/><Placemark xmlns="http://www.opengis.net/kml/2.2"/>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "kml:")
		})
	}
}

func TestDecode_Prolog(t *testing.T) {
	doc := "<?xml version=\"1.0\"?>\n<!-- generated -->\n" +
		`<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark><coordinates>1,2</coordinates></Placemark></kml>` +
		"\n<!-- end -->\n"
	pms, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, "1,2", pms[0].Coordinates)
}

func TestDecode_PlacemarkRoot(t *testing.T) {
	pms, err := Decode(strings.NewReader(`<Placemark xmlns="http://www.opengis.net/kml/2.2"><coordinates>1,2</coordinates></Placemark>`))
	require.NoError(t, err)
	require.Len(t, pms, 1)
}

func TestDecode_Latin1Charset(t *testing.T) {
	// "Évora" encoded as ISO-8859-1.
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<kml xmlns=\"http://www.opengis.net/kml/2.2\"><Placemark>" +
		"<description>\xc9vora</description><coordinates>1,2</coordinates>" +
		"</Placemark></kml>"
	pms, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, "Évora", pms[0].Description)
}

func TestDecode_UnknownCharset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="x-made-up"?><kml/>`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
}
