// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/quakemap/internal/mapview"
)

type errorBody struct {
	Error  string        `json:"error"`
	Notice string        `json:"notice,omitempty"`
	State  mapview.State `json:"state,omitempty"`
}

// Routes registers all handlers on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/map", s.HandleMap)
	mux.HandleFunc("GET /api/layers/{name}", s.HandleLayer)
	mux.HandleFunc("GET /legend.webp", s.HandleLegend)
	mux.HandleFunc("GET /legend.png", s.HandleLegend)
	mux.HandleFunc("GET /favicon.svg", s.HandleFavicon)
	mux.HandleFunc("GET /favicon.ico", s.HandleFavicon)
	mux.HandleFunc("GET /healthz", s.HandleHealth)
	mux.HandleFunc("GET /{$}", s.HandleIndex)
	return mux
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if match := r.Header.Get("If-None-Match"); match == s.IndexETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", s.IndexETag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleFavicon serves the site icon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleLegend serves the rasterised legend.
func (s *ServerContext) HandleLegend(w http.ResponseWriter, r *http.Request) {
	data, ctype := s.LegendPNG, "image/png"
	if r.URL.Path == "/legend.webp" {
		data, ctype = s.LegendWebP, "image/webp"
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// HandleHealth is the liveness probe.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMap serves the current view: base layers, overlays, notices and legend.
// The client's own selection is passed as ?base=<name>&hide=<overlay,...> and
// only shapes this response; nothing is stored server-side.
func (s *ServerContext) HandleMap(w http.ResponseWriter, r *http.Request) {
	snap := s.View.Snapshot()
	q := r.URL.Query()

	var err error
	if base := q.Get("base"); base != "" {
		if snap, err = snap.SelectBase(base); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
	}
	if hide := q.Get("hide"); hide != "" {
		for _, name := range strings.Split(hide, ",") {
			if snap, err = snap.SetOverlayVisible(strings.TrimSpace(name), false); err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
				return
			}
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, snap)
}

// HandleLayer serves an overlay's GeoJSON once it is rendered.
// Pending overlays answer 202 and failed ones 503 with the user notice.
func (s *ServerContext) HandleLayer(w http.ResponseWriter, r *http.Request) {
	o, err := s.View.Overlay(r.PathValue("name"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}

	data, state := o.GeoJSON()
	switch state {
	case mapview.StateRendered:
		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)

	case mapview.StateFailed:
		st := o.Status()
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Error:  st.Error,
			Notice: o.Notice(),
			State:  state,
		})

	default:
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusAccepted, errorBody{Error: "layer is loading", State: state})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}
