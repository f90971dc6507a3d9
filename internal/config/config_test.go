package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.BaseLayers, 3)
	assert.Equal(t, "Outdoor", cfg.BaseLayers[0].Name)
	assert.Equal(t, [2]float64{30.78, -20}, cfg.View.Center)
	assert.Equal(t, 4, cfg.View.Zoom)
	assert.True(t, eris.Is(cfg.Validate(), ErrMissingToken))

	cfg.AccessToken = "pk.test"
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
access_token: pk.file
timeout: 5s
feeds:
  earthquakes: https://example.com/quakes.geojson
view:
  default_base: Streets
  zoom: 3
base_layers:
  - name: Streets
    id: mapbox/streets-v11
  - name: OSM
    url: https://tile.openstreetmap.org/{z}/{x}/{y}.png
    attribution: OpenStreetMap
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "pk.file", cfg.AccessToken)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "https://example.com/quakes.geojson", cfg.Feeds.Earthquakes)
	assert.Equal(t, PlateFeedURL, cfg.Feeds.Plates)
	assert.Equal(t, 3, cfg.View.Zoom)
	assert.Equal(t, [2]float64{30.78, -20}, cfg.View.Center)

	require.Len(t, cfg.BaseLayers, 2)
	assert.Equal(t, MapboxTileURL, cfg.BaseLayers[0].URL)
	assert.Equal(t, MapboxAttribution, cfg.BaseLayers[0].Attribution)
	assert.Equal(t, 512, cfg.BaseLayers[0].TileSize)
	assert.Equal(t, -1, cfg.BaseLayers[0].ZoomOffset)
	assert.Equal(t, 15, cfg.BaseLayers[0].MaxZoom)
	assert.Equal(t, "OpenStreetMap", cfg.BaseLayers[1].Attribution)
	assert.Equal(t, 256, cfg.BaseLayers[1].TileSize)
	assert.Equal(t, 18, cfg.BaseLayers[1].MaxZoom)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds: [\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.AccessToken = "   "
	assert.True(t, eris.Is(cfg.Validate(), ErrMissingToken))

	cfg.AccessToken = "pk"
	cfg.View.DefaultBase = "Nope"
	assert.True(t, eris.Is(cfg.Validate(), ErrInvalidConfig))

	cfg.View.DefaultBase = ""
	cfg.BaseLayers = append(cfg.BaseLayers, cfg.BaseLayers[0])
	assert.True(t, eris.Is(cfg.Validate(), ErrInvalidConfig))

	cfg.BaseLayers = nil
	assert.True(t, eris.Is(cfg.Validate(), ErrInvalidConfig))
}

func TestTileURL(t *testing.T) {
	l := Default().BaseLayers[1]
	assert.Equal(t,
		"https://api.mapbox.com/styles/v1/mapbox/satellite-v9/tiles/{z}/{x}/{y}?access_token=pk.abc",
		l.TileURL("pk.abc"))
}
