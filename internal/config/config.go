// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Default upstream feeds.
const (
	EarthquakeFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"
	PlateFeedURL      = "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"
)

// MapboxTileURL is the tile template for Mapbox styles.
const MapboxTileURL = "https://api.mapbox.com/styles/v1/{id}/tiles/{z}/{x}/{y}?access_token={accessToken}"

// MapboxAttribution is shown for every Mapbox base layer.
const MapboxAttribution = `© <a href="https://www.mapbox.com/about/maps/">Mapbox</a> ` +
	`© <a href="http://www.openstreetmap.org/copyright">OpenStreetMap</a> ` +
	`<strong><a href="https://www.mapbox.com/map-feedback/" target="_blank">Improve this map</a></strong>`

var (
	// ErrMissingToken is returned when no tile provider access token is set.
	ErrMissingToken = eris.New("missing tile provider access token")
	// ErrInvalidConfig wraps any other validation failure.
	ErrInvalidConfig = eris.New("invalid configuration")
)

// Config represents the root configuration file structure.
type Config struct {
	AccessToken string        `yaml:"access_token,omitempty" json:"-"`
	Feeds       Feeds         `yaml:"feeds" json:"feeds"`
	View        View          `yaml:"view" json:"view"`
	BaseLayers  []BaseLayer   `yaml:"base_layers" json:"base_layers"`
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"-"`
}

// Feeds holds the upstream GeoJSON document URLs.
type Feeds struct {
	Earthquakes string `yaml:"earthquakes" json:"earthquakes"`
	Plates      string `yaml:"plates" json:"plates"`
}

// View is the initial map position.
type View struct {
	DefaultBase string     `yaml:"default_base,omitempty" json:"default_base,omitempty"`
	Center      [2]float64 `yaml:"center" json:"center"` // [Lat, Lon]
	Zoom        int        `yaml:"zoom" json:"zoom"`
}

// BaseLayer is one selectable background tile layer.
type BaseLayer struct {
	Name        string `yaml:"name" json:"name"`
	StyleID     string `yaml:"id" json:"-"`
	URL         string `yaml:"url,omitempty" json:"-"`
	Attribution string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	TileSize    int    `yaml:"tile_size,omitempty" json:"tile_size"`
	ZoomOffset  int    `yaml:"zoom_offset,omitempty" json:"zoom_offset"`
	MaxZoom     int    `yaml:"max_zoom,omitempty" json:"max_zoom"`
}

// Default returns the built-in configuration without an access token.
func Default() *Config {
	return &Config{
		Feeds: Feeds{
			Earthquakes: EarthquakeFeedURL,
			Plates:      PlateFeedURL,
		},
		View: View{
			Center: [2]float64{30.78, -20},
			Zoom:   4,
		},
		BaseLayers: []BaseLayer{
			mapboxLayer("Outdoor", "mapbox/outdoors-v9"),
			mapboxLayer("Satellite", "mapbox/satellite-v9"),
			mapboxLayer("Grayscale", "mapbox/light-v10"),
		},
		Timeout: 30 * time.Second,
	}
}

func mapboxLayer(name, id string) BaseLayer {
	return BaseLayer{
		Name:        name,
		StyleID:     id,
		URL:         MapboxTileURL,
		Attribution: MapboxAttribution,
		TileSize:    512,
		ZoomOffset:  -1,
		MaxZoom:     15,
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Fields absent from the file keep their defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize fills per-layer fields that the file left empty.
func (c *Config) normalize() {
	for i := range c.BaseLayers {
		l := &c.BaseLayers[i]
		if l.URL == "" {
			l.URL = MapboxTileURL
		}
		mapbox := strings.Contains(l.URL, "api.mapbox.com")
		if l.Attribution == "" && mapbox {
			l.Attribution = MapboxAttribution
		}
		if l.TileSize <= 0 {
			l.TileSize = 256
			// mapbox styles serve 512px tiles
			if mapbox {
				l.TileSize, l.ZoomOffset = 512, -1
			}
		}
		if l.MaxZoom <= 0 {
			l.MaxZoom = 18
			if mapbox {
				l.MaxZoom = 15
			}
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks the configuration before the map is built.
// A missing access token is reported as ErrMissingToken.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMissingToken
	}
	if c.Feeds.Earthquakes == "" || c.Feeds.Plates == "" {
		return eris.Wrap(ErrInvalidConfig, "both feed URLs are required")
	}
	if len(c.BaseLayers) == 0 {
		return eris.Wrap(ErrInvalidConfig, "at least one base layer is required")
	}

	seen := make(map[string]bool, len(c.BaseLayers))
	for _, l := range c.BaseLayers {
		if l.Name == "" {
			return eris.Wrap(ErrInvalidConfig, "base layer without name")
		}
		if seen[l.Name] {
			return eris.Wrapf(ErrInvalidConfig, "duplicate base layer %q", l.Name)
		}
		seen[l.Name] = true
	}

	if c.View.DefaultBase != "" && !seen[c.View.DefaultBase] {
		return eris.Wrapf(ErrInvalidConfig, "default base layer %q not defined", c.View.DefaultBase)
	}

	return nil
}

// TileURL expands the layer template with its style id and the access token.
// The {z}/{x}/{y} placeholders are left for the map client.
func (l BaseLayer) TileURL(token string) string {
	return strings.NewReplacer("{id}", l.StyleID, "{accessToken}", token).Replace(l.URL)
}
