package geo

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
)

// EarthquakeFeature is a single event read from the earthquake feed.
type EarthquakeFeature struct {
	Place     string  `json:"place" yaml:"place"`
	Magnitude float64 `json:"mag" yaml:"mag"`
	DepthKm   float64 `json:"depth" yaml:"depth"`
	Longitude float64 `json:"lon" yaml:"lon"`
	Latitude  float64 `json:"lat" yaml:"lat"`
}

// ErrMalformedFeature marks a feature missing required fields.
var ErrMalformedFeature = eris.New("malformed feature")

// EarthquakeFromFeature extracts an earthquake from a point feature.
// It expects properties.mag (number), properties.place (string, optional)
// and geometry.coordinates as [lon, lat, depth].
func EarthquakeFromFeature(f Feature) (EarthquakeFeature, error) {
	if f.Geometry == nil {
		return EarthquakeFeature{}, eris.Wrap(ErrMalformedFeature, "missing geometry")
	}
	if f.Geometry.Type != "Point" {
		return EarthquakeFeature{}, eris.Wrapf(ErrMalformedFeature, "unexpected geometry %q", f.Geometry.Type)
	}

	var coords []*float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
		return EarthquakeFeature{}, eris.Wrap(ErrMalformedFeature, "coordinates are not numbers")
	}
	if len(coords) < 3 {
		return EarthquakeFeature{}, eris.Wrapf(ErrMalformedFeature, "expected [lon, lat, depth], got %d values", len(coords))
	}
	for i, c := range coords[:3] {
		if c == nil {
			return EarthquakeFeature{}, eris.Wrapf(ErrMalformedFeature, "coordinate %d is null", i)
		}
	}
	lon, lat, depth := *coords[0], *coords[1], *coords[2]
	if !ValidLonLat(lon, lat) {
		return EarthquakeFeature{}, eris.Wrapf(ErrMalformedFeature, "coordinates out of range: %g, %g", lon, lat)
	}
	if math.IsNaN(depth) || math.IsInf(depth, 0) {
		return EarthquakeFeature{}, eris.Wrap(ErrMalformedFeature, "depth is not finite")
	}

	mag, ok := f.Properties["mag"].(float64)
	if !ok {
		return EarthquakeFeature{}, eris.Wrap(ErrMalformedFeature, "missing properties.mag")
	}

	place, _ := f.Properties["place"].(string)

	return EarthquakeFeature{
		Magnitude: mag,
		Place:     place,
		DepthKm:   depth,
		Longitude: lon,
		Latitude:  lat,
	}, nil
}
