// Package style maps earthquake attributes to display properties.
//
// Depth colors come from a single ordered threshold table (ColorBand) that is
// also used to build the map legend, so the legend always shows the exact
// thresholds applied to live markers.
package style

import (
	"github.com/rotisserie/eris"
)

// MinRadius is the smallest marker radius ever returned.
const MinRadius = 1.0

// RadiusScale converts magnitude to marker radius in pixels.
const RadiusScale = 4.0

// Band is a single depth threshold paired with its color.
// A depth falls into the band when it is strictly greater than Lower.
type Band struct {
	Color string  `json:"color" yaml:"color"`
	Lower float64 `json:"lower" yaml:"lower"`
}

// ColorBand is an ordered set of bands with strictly increasing lower bounds.
// The first band color is the base color used for anything at or below the
// second threshold, including negative depths.
type ColorBand []Band

// DefaultBands is the depth color table in km.
var DefaultBands = ColorBand{
	{Lower: 0, Color: "#9F3"},
	{Lower: 10, Color: "#FF0"},
	{Lower: 25, Color: "#FC0"},
	{Lower: 50, Color: "#F90"},
	{Lower: 75, Color: "#F60"},
	{Lower: 90, Color: "#F30"},
}

// ErrInvalidBands is returned by Validate for an unusable table.
var ErrInvalidBands = eris.New("invalid color band table")

func init() {
	if err := DefaultBands.Validate(); err != nil {
		panic(err)
	}
}

// Bands returns a copy of the default table.
func Bands() ColorBand {
	out := make(ColorBand, len(DefaultBands))
	copy(out, DefaultBands)
	return out
}

// Validate checks that the table is non-empty, has colors, and that the lower
// bounds strictly increase.
func (cb ColorBand) Validate() error {
	if len(cb) == 0 {
		return eris.Wrap(ErrInvalidBands, "no bands")
	}
	for i, b := range cb {
		if b.Color == "" {
			return eris.Wrapf(ErrInvalidBands, "band %d has no color", i)
		}
		if i > 0 && b.Lower <= cb[i-1].Lower {
			return eris.Wrapf(ErrInvalidBands, "band %d lower bound %g not above %g", i, b.Lower, cb[i-1].Lower)
		}
	}
	return nil
}

// Color returns the color for depth, checking bands top-down.
func (cb ColorBand) Color(depthKm float64) string {
	if len(cb) == 0 {
		return ""
	}
	for i := len(cb) - 1; i > 0; i-- {
		if depthKm > cb[i].Lower {
			return cb[i].Color
		}
	}
	return cb[0].Color
}

// ColorForDepth returns the color of the default table for depthKm.
func ColorForDepth(depthKm float64) string {
	return DefaultBands.Color(depthKm)
}

// RadiusForMagnitude returns the marker radius for a magnitude: zero maps to
// MinRadius and any other value to magnitude*RadiusScale. Negative magnitudes,
// reported for micro-quakes, would give a negative radius and are clamped to
// MinRadius.
func RadiusForMagnitude(magnitude float64) float64 {
	if magnitude <= 0 {
		return MinRadius
	}
	return magnitude * RadiusScale
}
