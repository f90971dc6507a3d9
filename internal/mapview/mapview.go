// Package mapview composes the map: base layer selection, overlay groups
// and the asynchronous loading of both data layers.
package mapview

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/woozymasta/quakemap/internal/config"
	"github.com/woozymasta/quakemap/internal/geo"
	"github.com/woozymasta/quakemap/internal/legend"
	"github.com/woozymasta/quakemap/internal/render"
)

// Overlay identifiers.
const (
	OverlayEarthquakes = "earthquakes"
	OverlayPlates      = "tectonic-plates"
)

// User notices for failed overlays.
const (
	NoticeEarthquakes = "earthquake data unavailable"
	NoticePlates      = "tectonic plate data unavailable"
)

var (
	// ErrUnknownBaseLayer is returned when selecting a base layer that does not exist.
	ErrUnknownBaseLayer = eris.New("unknown base layer")
	// ErrUnknownOverlay is returned for an overlay name that does not exist.
	ErrUnknownOverlay = eris.New("unknown overlay")
	// ErrNoBaseLayers is returned when a view is created without base layers.
	ErrNoBaseLayers = eris.New("no base layers")
)

// Fetcher downloads a GeoJSON FeatureCollection.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*geo.FeatureCollection, error)
}

// BaseLayer is a selectable background tile layer.
type BaseLayer struct {
	Name        string `json:"name"`
	TileURL     string `json:"url"`
	Attribution string `json:"attribution,omitempty"`
	TileSize    int    `json:"tile_size"`
	ZoomOffset  int    `json:"zoom_offset"`
	MaxZoom     int    `json:"max_zoom"`
	Active      bool   `json:"active"`
}

// Options holds the initial view settings.
type Options struct {
	Legend      legend.Legend
	DefaultBase string
	Center      [2]float64
	Zoom        int
}

// View is the composed map. It owns the base layer set and both overlay groups.
// The base set is fixed after New; base selection and overlay visibility are
// per client and applied to a Snapshot.
type View struct {
	base        []BaseLayer
	active      int
	earthquakes *Overlay
	plates      *Overlay
	legend      legend.Legend
	center      [2]float64
	zoom        int
}

// Snapshot is a consistent copy of the view for one client.
type Snapshot struct {
	Notices    []string        `json:"notices"`
	BaseLayers []BaseLayer     `json:"base_layers"`
	Overlays   []OverlayStatus `json:"overlays"`
	Legend     legend.Legend   `json:"legend"`
	Center     [2]float64      `json:"center"`
	Zoom       int             `json:"zoom"`
}

// New creates a view with the default (or first) base layer active and both
// overlays pending.
func New(base []BaseLayer, opts Options) (*View, error) {
	if len(base) == 0 {
		return nil, ErrNoBaseLayers
	}

	v := &View{
		base:        make([]BaseLayer, len(base)),
		earthquakes: newOverlay(OverlayEarthquakes, "Earthquakes", NoticeEarthquakes),
		plates:      newOverlay(OverlayPlates, "Tectonic Plates", NoticePlates),
		legend:      opts.Legend,
		center:      opts.Center,
		zoom:        opts.Zoom,
	}
	copy(v.base, base)

	if len(v.legend.Entries) == 0 {
		v.legend = legend.Default()
	}

	if opts.DefaultBase != "" {
		idx := v.indexOf(opts.DefaultBase)
		if idx < 0 {
			return nil, eris.Wrapf(ErrUnknownBaseLayer, "%q", opts.DefaultBase)
		}
		v.active = idx
	}
	v.markActive()

	return v, nil
}

// FromConfig builds a view from validated configuration.
func FromConfig(cfg *config.Config) (*View, error) {
	base := make([]BaseLayer, 0, len(cfg.BaseLayers))
	for _, l := range cfg.BaseLayers {
		base = append(base, BaseLayer{
			Name:        l.Name,
			TileURL:     l.TileURL(cfg.AccessToken),
			Attribution: l.Attribution,
			TileSize:    l.TileSize,
			ZoomOffset:  l.ZoomOffset,
			MaxZoom:     l.MaxZoom,
		})
	}

	return New(base, Options{
		Legend:      legend.Default(),
		DefaultBase: cfg.View.DefaultBase,
		Center:      cfg.View.Center,
		Zoom:        cfg.View.Zoom,
	})
}

func (v *View) indexOf(name string) int {
	for i, l := range v.base {
		if l.Name == name {
			return i
		}
	}
	return -1
}

func (v *View) markActive() {
	for i := range v.base {
		v.base[i].Active = i == v.active
	}
}

// ActiveBase returns the default base layer.
func (v *View) ActiveBase() BaseLayer {
	return v.base[v.active]
}

// Overlay returns the overlay group by name.
func (v *View) Overlay(name string) (*Overlay, error) {
	switch name {
	case OverlayEarthquakes:
		return v.earthquakes, nil
	case OverlayPlates:
		return v.plates, nil
	}
	return nil, eris.Wrapf(ErrUnknownOverlay, "%q", name)
}

// AddEarthquakeLayer populates the earthquake overlay.
func (v *View) AddEarthquakeLayer(layer *render.Layer, rep render.Report) error {
	return v.earthquakes.set(layer, rep)
}

// AddPlateLayer populates the tectonic plate overlay.
func (v *View) AddPlateLayer(layer *render.Layer, rep render.Report) error {
	return v.plates.set(layer, rep)
}

// FailEarthquakes marks the earthquake overlay failed.
func (v *View) FailEarthquakes(err error) {
	v.earthquakes.fail(err)
}

// FailPlates marks the tectonic plate overlay failed.
func (v *View) FailPlates(err error) {
	v.plates.fail(err)
}

// Load fetches and renders both data layers. The two tasks are independent:
// each one handles its own failure, neither cancels the other, and they may
// finish in any order. Load returns when both are done.
func (v *View) Load(ctx context.Context, f Fetcher, earthquakesURL, platesURL string) {
	var g errgroup.Group

	g.Go(func() error {
		v.loadOverlay(ctx, f, earthquakesURL, v.earthquakes, render.Earthquakes)
		return nil
	})
	g.Go(func() error {
		v.loadOverlay(ctx, f, platesURL, v.plates, render.Plates)
		return nil
	})

	_ = g.Wait()
}

type renderFunc func(*geo.FeatureCollection) (*render.Layer, render.Report)

func (v *View) loadOverlay(ctx context.Context, f Fetcher, url string, o *Overlay, fn renderFunc) {
	start := time.Now()

	fc, err := f.Fetch(ctx, url)
	if err != nil {
		o.fail(err)
		log.Error().
			Err(err).
			Str("overlay", o.name).
			Str("url", url).
			Msg("Failed to load overlay")
		return
	}

	layer, rep := fn(fc)
	if err := o.set(layer, rep); err != nil {
		o.fail(err)
		log.Error().Err(err).Str("overlay", o.name).Msg("Failed to store overlay")
		return
	}

	log.Info().
		Str("overlay", o.name).
		Int("features", rep.Rendered).
		Int("skipped", rep.Skipped).
		Dur("duration", time.Since(start)).
		Msg("Overlay rendered")
}

// Legend returns the legend of the view.
func (v *View) Legend() legend.Legend {
	return v.legend
}

// Snapshot returns a copy of the current view state with the default base
// layer active and every rendered overlay visible.
func (v *View) Snapshot() Snapshot {
	base := make([]BaseLayer, len(v.base))
	copy(base, v.base)

	s := Snapshot{
		Center:     v.center,
		Zoom:       v.zoom,
		BaseLayers: base,
		Legend:     v.legend,
		Notices:    []string{},
	}
	for _, o := range []*Overlay{v.earthquakes, v.plates} {
		s.Overlays = append(s.Overlays, o.Status())
		if n := o.Notice(); n != "" {
			s.Notices = append(s.Notices, n)
		}
	}

	return s
}

// ActiveBase returns the active base layer of the snapshot.
func (s Snapshot) ActiveBase() BaseLayer {
	for _, b := range s.BaseLayers {
		if b.Active {
			return b
		}
	}
	return BaseLayer{}
}

// SelectBase returns a copy with name as the only active base layer.
func (s Snapshot) SelectBase(name string) (Snapshot, error) {
	found := false
	base := make([]BaseLayer, len(s.BaseLayers))
	for i, b := range s.BaseLayers {
		b.Active = b.Name == name
		found = found || b.Active
		base[i] = b
	}
	if !found {
		return s, eris.Wrapf(ErrUnknownBaseLayer, "%q", name)
	}

	s.BaseLayers = base
	return s, nil
}

// SetOverlayVisible returns a copy with the overlay shown or hidden.
func (s Snapshot) SetOverlayVisible(name string, visible bool) (Snapshot, error) {
	overlays := make([]OverlayStatus, len(s.Overlays))
	copy(overlays, s.Overlays)

	for i := range overlays {
		if overlays[i].Name == name {
			overlays[i].Visible = visible
			s.Overlays = overlays
			return s, nil
		}
	}
	return s, eris.Wrapf(ErrUnknownOverlay, "%q", name)
}
