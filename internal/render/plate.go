package render

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/quakemap/internal/geo"
)

// Plate boundary line style.
const (
	PlateColor  = "#cc0000"
	PlateWeight = 3.0
)

// Plates renders every line geometry of the plate boundary feed with the
// fixed boundary style.
func Plates(fc *geo.FeatureCollection) (*Layer, Report) {
	layer := geojson.NewFeatureCollection()
	var rep Report
	if fc == nil {
		return layer, rep
	}

	rep.Total = len(fc.Features)
	for i, f := range fc.Features {
		p, err := geo.PlateFromFeature(f)
		if err != nil {
			rep.Skipped++
			log.Warn().
				Err(err).
				Int("index", i).
				Msg("Skipping plate boundary feature")
			continue
		}

		var g orb.Geometry = p.Geometry
		if len(p.Geometry) == 1 {
			g = p.Geometry[0]
		}

		out := geojson.NewFeature(g)
		out.Properties["color"] = PlateColor
		out.Properties["weight"] = PlateWeight
		layer.Append(out)
		rep.Rendered++
	}

	log.Debug().
		Int("total", rep.Total).
		Int("rendered", rep.Rendered).
		Int("skipped", rep.Skipped).
		Msg("Plate layer rendered")

	return layer, rep
}
