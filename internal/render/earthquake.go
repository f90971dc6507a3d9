package render

import (
	"fmt"
	"html"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/quakemap/internal/geo"
	"github.com/woozymasta/quakemap/internal/style"
)

// Marker stroke and fill settings shared by every earthquake.
const (
	MarkerStrokeColor = "#000000"
	MarkerStrokeWidth = 0.5
	MarkerFillOpacity = 0.5
)

// Marker is a styled circle marker for one earthquake.
type Marker struct {
	Point       orb.Point
	Magnitude   float64
	Place       string
	DepthKm     float64
	FillColor   string
	Color       string
	Popup       string
	Radius      float64
	Weight      float64
	FillOpacity float64
}

// Earthquake styles a single earthquake.
func Earthquake(q geo.EarthquakeFeature) Marker {
	return Marker{
		Point:       orb.Point{q.Longitude, geo.ClampMercatorLat(q.Latitude)},
		Magnitude:   q.Magnitude,
		Place:       q.Place,
		DepthKm:     q.DepthKm,
		Radius:      style.RadiusForMagnitude(q.Magnitude),
		FillColor:   style.ColorForDepth(q.DepthKm),
		Color:       MarkerStrokeColor,
		Weight:      MarkerStrokeWidth,
		FillOpacity: MarkerFillOpacity,
		Popup:       Popup(q),
	}
}

// Popup returns the info popup HTML for an earthquake.
func Popup(q geo.EarthquakeFeature) string {
	place := q.Place
	if place == "" {
		place = "Unknown"
	}
	return fmt.Sprintf(
		"<h3>Earthquake Info</h3><hr>Location: %s<br>Magnitude: %s<br>Depth: %s km",
		html.EscapeString(place),
		strconv.FormatFloat(q.Magnitude, 'f', -1, 64),
		strconv.FormatFloat(q.DepthKm, 'f', -1, 64),
	)
}

// Feature encodes the marker as a GeoJSON point with the raw values
// and style properties.
func (m Marker) Feature() *geojson.Feature {
	f := geojson.NewFeature(m.Point)
	f.Properties["mag"] = m.Magnitude
	f.Properties["place"] = m.Place
	f.Properties["depth"] = m.DepthKm
	f.Properties["radius"] = m.Radius
	f.Properties["fillColor"] = m.FillColor
	f.Properties["color"] = m.Color
	f.Properties["weight"] = m.Weight
	f.Properties["fillOpacity"] = m.FillOpacity
	f.Properties["popup"] = m.Popup
	return f
}

// Earthquakes renders every valid feature of the earthquake feed.
// Malformed features are skipped with a warning and never stop the rest.
func Earthquakes(fc *geo.FeatureCollection) (*Layer, Report) {
	layer := geojson.NewFeatureCollection()
	var rep Report
	if fc == nil {
		return layer, rep
	}

	rep.Total = len(fc.Features)
	for i, f := range fc.Features {
		q, err := geo.EarthquakeFromFeature(f)
		if err != nil {
			rep.Skipped++
			log.Warn().
				Err(err).
				Int("index", i).
				Interface("id", f.ID).
				Msg("Skipping earthquake feature")
			continue
		}

		layer.Append(Earthquake(q).Feature())
		rep.Rendered++
	}

	log.Debug().
		Int("total", rep.Total).
		Int("rendered", rep.Rendered).
		Int("skipped", rep.Skipped).
		Msg("Earthquake layer rendered")

	return layer, rep
}
