package server

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/quakemap/internal/legend"
	"github.com/woozymasta/quakemap/internal/mapview"
	"github.com/woozymasta/quakemap/internal/page"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	View       *mapview.View
	IndexHTML  []byte
	IndexETag  string
	Favicon    []byte
	LegendWebP []byte
	LegendPNG  []byte
}

// NewServerContext renders the static parts of the site for the given view.
func NewServerContext(view *mapview.View, title string) (*ServerContext, error) {
	l := view.Legend()

	p, err := page.Build(title, l)
	if err != nil {
		return nil, err
	}

	webpData, err := l.Encode(legend.FormatWebP)
	if err != nil {
		return nil, err
	}
	pngData, err := l.Encode(legend.FormatPNG)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("index_bytes", len(p.Index)).
		Int("legend_entries", len(l.Entries)).
		Str("base", view.ActiveBase().Name).
		Msg("Server context initialized successfully")

	return &ServerContext{
		View:       view,
		IndexHTML:  p.Index,
		IndexETag:  fmt.Sprintf(`"%x"`, sha256.Sum256(p.Index)),
		Favicon:    p.Favicon,
		LegendWebP: webpData,
		LegendPNG:  pngData,
	}, nil
}
