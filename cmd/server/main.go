package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/quakemap/internal/config"
	"github.com/woozymasta/quakemap/internal/feed"
	"github.com/woozymasta/quakemap/internal/logger"
	"github.com/woozymasta/quakemap/internal/mapview"
	"github.com/woozymasta/quakemap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE"         description:"Path to configuration file (built-in defaults when empty)"`
	Token      string        `short:"t" long:"token"   env:"MAPBOX_ACCESS_TOKEN" description:"Tile provider access token"`
	Addr       string        `short:"a" long:"addr"    env:"LISTEN_ADDRESS"      description:"Address to listen on"          default:"0.0.0.0"`
	Title      string        `long:"title"             env:"PAGE_TITLE"          description:"Page title"`
	Port       int           `short:"p" long:"port"    env:"LISTEN_PORT"         description:"Port to listen on"             default:"8080"`
	Timeout    time.Duration `long:"timeout"           env:"FEED_TIMEOUT"        description:"Feed request timeout (overrides config)"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Token != "" {
		cfg.AccessToken = opts.Token
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			log.Fatal().Msg("Tile provider access token is required: set --token, MAPBOX_ACCESS_TOKEN or access_token in config")
		}
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	view, err := mapview.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compose map")
	}

	srvCtx, err := server.NewServerContext(view, opts.Title)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build page")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Both feeds load in the background; the page is served meanwhile.
	fetcher := feed.New(feed.Options{Timeout: cfg.Timeout})
	go view.Load(ctx, fetcher, cfg.Feeds.Earthquakes, cfg.Feeds.Plates)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           server.RequestLogger(srvCtx.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Int("base_layers", len(cfg.BaseLayers)).
		Str("earthquakes", cfg.Feeds.Earthquakes).
		Str("plates", cfg.Feeds.Plates).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
