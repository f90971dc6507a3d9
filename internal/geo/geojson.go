// Package geo decodes the upstream GeoJSON feeds into domain features.
package geo

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// FeatureCollection is a loosely typed GeoJSON collection.
// Geometry coordinates and properties are kept raw so that one bad feature
// can be rejected without failing the whole document.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature represents a single geographic feature with geometry and properties.
type Feature struct {
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Geometry   *Geometry              `json:"geometry" yaml:"geometry"`
	Type       string                 `json:"type" yaml:"type"`
	ID         interface{}            `json:"id,omitempty" yaml:"id,omitempty"`
}

// Geometry holds the geometry type and its undecoded coordinates.
type Geometry struct {
	Type        string          `json:"type" yaml:"type"`
	Coordinates json.RawMessage `json:"coordinates" yaml:"-"`
}

// ErrNotFeatureCollection is returned when a document is not a FeatureCollection.
var ErrNotFeatureCollection = eris.New("document is not a GeoJSON FeatureCollection")

// DecodeCollection parses a GeoJSON FeatureCollection document.
func DecodeCollection(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "decode feature collection")
	}
	if fc.Type != "FeatureCollection" {
		return nil, eris.Wrapf(ErrNotFeatureCollection, "got type %q", fc.Type)
	}
	return &fc, nil
}
