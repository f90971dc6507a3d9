package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/quakemap/internal/config"
	"github.com/woozymasta/quakemap/internal/geo"
	"github.com/woozymasta/quakemap/internal/mapview"
	"github.com/woozymasta/quakemap/internal/render"
)

func newTestServer(t *testing.T) (*ServerContext, http.Handler) {
	t.Helper()

	cfg := config.Default()
	cfg.AccessToken = "pk.test"
	view, err := mapview.FromConfig(cfg)
	require.NoError(t, err)

	s, err := NewServerContext(view, "")
	require.NoError(t, err)
	return s, s.Routes()
}

func do(h http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, s.IndexETag, rec.Header().Get("ETag"))
	assert.Contains(t, rec.Body.String(), "Earthquake Depth:")

	rec = do(h, http.MethodGet, "/", "If-None-Match", s.IndexETag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = do(h, http.MethodGet, "/missing.js")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapSnapshot(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/map")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap mapview.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.BaseLayers, 3)
	assert.True(t, snap.BaseLayers[0].Active)
	assert.Contains(t, snap.BaseLayers[0].TileURL, "access_token=pk.test")
	require.Len(t, snap.Overlays, 2)
	assert.Equal(t, mapview.StatePending, snap.Overlays[0].State)
	assert.Len(t, snap.Legend.Entries, 6)
	assert.Empty(t, snap.Notices)
}

func TestLayerStates(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/layers/earthquakes")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	fc, err := geo.DecodeCollection([]byte(`{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"mag":5,"place":"X"},"geometry":{"type":"Point","coordinates":[1,2,95]}}]}`))
	require.NoError(t, err)
	require.NoError(t, s.View.AddEarthquakeLayer(render.Earthquakes(fc)))
	s.View.FailPlates(errors.New("status 404"))

	rec = do(h, http.MethodGet, "/api/layers/earthquakes")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"fillColor":"#F30"`)

	rec = do(h, http.MethodGet, "/api/layers/tectonic-plates")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, mapview.NoticePlates, body.Notice)
	assert.Equal(t, mapview.StateFailed, body.State)

	rec = do(h, http.MethodGet, "/api/layers/volcanoes")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/map")
	var snap mapview.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, []string{mapview.NoticePlates}, snap.Notices)
}

func TestMapSelectionFromQuery(t *testing.T) {
	s, h := newTestServer(t)
	require.NoError(t, s.View.AddPlateLayer(render.Plates(nil)))

	rec := do(h, http.MethodGet, "/api/map?base=Satellite&hide=tectonic-plates")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap mapview.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "Satellite", snap.ActiveBase().Name)
	assert.False(t, snap.Overlays[1].Visible)

	// The selection is not shared with other clients.
	rec = do(h, http.MethodGet, "/api/map")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "Outdoor", snap.ActiveBase().Name)
	assert.True(t, snap.Overlays[1].Visible)

	rec = do(h, http.MethodGet, "/api/map?base=Terrain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(h, http.MethodGet, "/api/map?hide=volcanoes")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoSharedSelectionRoutes(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/base/Satellite")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(h, http.MethodPost, "/api/overlays/earthquakes?visible=false")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/legend.webp")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("RIFF")))

	rec = do(h, http.MethodGet, "/legend.png")
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(h, http.MethodGet, "/favicon.svg")
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	rec = do(h, http.MethodGet, "/healthz")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))
	do(h, http.MethodGet, "/tea")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/tea", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(5), entry["bytes"])
	assert.Equal(t, "info", entry["level"])
}
