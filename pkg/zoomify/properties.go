package zoomify

import (
	"encoding/xml"
	"fmt"
)

// PropertiesFile is the name of the per-image metadata document served from
// the tile-set base directory.
const PropertiesFile = "ImageProperties.xml"

// Properties holds the three scalars that fully determine a pyramid.
type Properties struct {
	Width    int
	Height   int
	TileSize int
}

// imageProperties mirrors the server document, e.g.
// <IMAGE_PROPERTIES WIDTH="2679" HEIGHT="4000" NUMTILES="241" VERSION="1.8" TILESIZE="256"/>
type imageProperties struct {
	XMLName  xml.Name `xml:"IMAGE_PROPERTIES"`
	Width    int      `xml:"WIDTH,attr"`
	Height   int      `xml:"HEIGHT,attr"`
	TileSize int      `xml:"TILESIZE,attr"`
}

// ParseProperties parses an ImageProperties.xml document. A missing or
// non-positive required field is an error: without exact geometry every
// generated tile URL would be wrong.
func ParseProperties(data []byte) (Properties, error) {
	var doc imageProperties
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Properties{}, fmt.Errorf("zoomify: parse %s: %w", PropertiesFile, err)
	}

	if doc.Width <= 0 {
		return Properties{}, fmt.Errorf("zoomify: %s: missing or invalid WIDTH", PropertiesFile)
	}
	if doc.Height <= 0 {
		return Properties{}, fmt.Errorf("zoomify: %s: missing or invalid HEIGHT", PropertiesFile)
	}
	if doc.TileSize <= 0 {
		return Properties{}, fmt.Errorf("zoomify: %s: missing or invalid TILESIZE", PropertiesFile)
	}

	return Properties{
		Width:    doc.Width,
		Height:   doc.Height,
		TileSize: doc.TileSize,
	}, nil
}

// Pyramid builds the pyramid described by the properties.
func (p Properties) Pyramid() (*Pyramid, error) {
	return New(p.Width, p.Height, p.TileSize)
}
