package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/woozymasta/quakemap/internal/config"
	"github.com/woozymasta/quakemap/internal/feed"
	"github.com/woozymasta/quakemap/internal/geo"
	"github.com/woozymasta/quakemap/internal/logger"
	"github.com/woozymasta/quakemap/internal/mapview"

	"github.com/jessevdk/go-flags"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE"  description:"Path to configuration file (built-in defaults when empty)"`
	Output     string        `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
	Layer      string        `short:"l" long:"layer"   description:"Layer to export" choice:"earthquakes" choice:"tectonic-plates" choice:"all" default:"all"`
	Format     string        `short:"f" long:"format"  description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Timeout    time.Duration `long:"timeout"           env:"FEED_TIMEOUT" description:"Feed request timeout (overrides config)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}

	view, err := mapview.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compose map")
	}

	eqURL, plURL := cfg.Feeds.Earthquakes, cfg.Feeds.Plates
	switch opts.Layer {
	case mapview.OverlayEarthquakes:
		plURL = ""
	case mapview.OverlayPlates:
		eqURL = ""
	}

	log.Info().
		Str("layer", opts.Layer).
		Str("format", opts.Format).
		Msg("Starting export")

	view.Load(context.Background(), skipEmpty{feed.New(feed.Options{Timeout: cfg.Timeout})}, eqURL, plURL)

	doc, err := collect(view, opts.Layer)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	out, err := encode(doc, opts.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}

	if opts.Output == "" {
		fmt.Println(string(out))
		return
	}

	if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
	}

	log.Info().
		Str("path", opts.Output).
		Int("bytes", len(out)).
		Msg("Export finished successfully")
}

// collect returns the selected layer as decoded GeoJSON, or for "all" a
// document keyed by overlay name with the legend attached.
func collect(view *mapview.View, layer string) (any, error) {
	names := []string{mapview.OverlayEarthquakes, mapview.OverlayPlates}
	if layer != "all" {
		names = []string{layer}
	}

	doc := map[string]any{}
	for _, name := range names {
		o, err := view.Overlay(name)
		if err != nil {
			return nil, err
		}

		data, state := o.GeoJSON()
		if state != mapview.StateRendered {
			st := o.Status()
			return nil, eris.Errorf("%s: %s (%s)", name, o.Notice(), st.Error)
		}

		var fc any
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
		if layer != "all" {
			return fc, nil
		}
		doc[name] = fc
	}
	doc["legend"] = view.Legend()

	return doc, nil
}

func encode(doc any, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// skipEmpty resolves unrequested layers (empty URL) to an empty collection
// without touching the network.
type skipEmpty struct {
	mapview.Fetcher
}

func (s skipEmpty) Fetch(ctx context.Context, url string) (*geo.FeatureCollection, error) {
	if url == "" {
		return &geo.FeatureCollection{Type: "FeatureCollection"}, nil
	}
	return s.Fetcher.Fetch(ctx, url)
}
