package geo

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// PlateBoundaryFeature is a tectonic plate boundary line.
// Single lines are stored as a one-element multi-line.
type PlateBoundaryFeature struct {
	Geometry orb.MultiLineString
}

// PlateFromFeature extracts boundary geometry from a LineString or
// MultiLineString feature.
func PlateFromFeature(f Feature) (PlateBoundaryFeature, error) {
	if f.Geometry == nil {
		return PlateBoundaryFeature{}, eris.Wrap(ErrMalformedFeature, "missing geometry")
	}
	if hasNull(f.Geometry.Coordinates) {
		return PlateBoundaryFeature{}, eris.Wrap(ErrMalformedFeature, "null coordinate")
	}

	raw, err := json.Marshal(f.Geometry)
	if err != nil {
		return PlateBoundaryFeature{}, eris.Wrap(ErrMalformedFeature, "unreadable geometry")
	}

	var g geojson.Geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return PlateBoundaryFeature{}, eris.Wrapf(ErrMalformedFeature, "decode %s: %v", f.Geometry.Type, err)
	}

	var mls orb.MultiLineString
	switch c := g.Coordinates.(type) {
	case orb.LineString:
		mls = orb.MultiLineString{c}
	case orb.MultiLineString:
		mls = c
	default:
		return PlateBoundaryFeature{}, eris.Wrapf(ErrMalformedFeature, "unexpected geometry %q", f.Geometry.Type)
	}

	if len(mls) == 0 {
		return PlateBoundaryFeature{}, eris.Wrap(ErrMalformedFeature, "empty multiline")
	}
	for _, line := range mls {
		if len(line) < 2 {
			return PlateBoundaryFeature{}, eris.Wrapf(ErrMalformedFeature, "line needs at least 2 positions, got %d", len(line))
		}
		for _, p := range line {
			if !ValidLonLat(p.Lon(), p.Lat()) {
				return PlateBoundaryFeature{}, eris.Wrap(ErrMalformedFeature, "invalid line position")
			}
		}
	}

	return PlateBoundaryFeature{Geometry: mls}, nil
}

// hasNull reports whether a coordinate array contains a null at any depth.
// Plain float decoding would read such positions as 0.
func hasNull(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return containsNil(v)
}

func containsNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		for _, e := range t {
			if containsNil(e) {
				return true
			}
		}
	}
	return false
}
