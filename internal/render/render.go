// Package render turns decoded feed features into styled map layers.
//
// Layers are GeoJSON FeatureCollections whose properties carry the display
// style, so the browser only has to hand them to the mapping library.
package render

import (
	"github.com/paulmach/orb/geojson"
)

// Layer is a styled overlay ready to be drawn.
type Layer = geojson.FeatureCollection

// Report summarises one render pass.
type Report struct {
	Total    int `json:"total" yaml:"total"`
	Rendered int `json:"rendered" yaml:"rendered"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}
