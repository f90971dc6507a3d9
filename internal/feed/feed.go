// Package feed downloads the upstream GeoJSON documents.
package feed

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/quakemap/internal/geo"
)

// DefaultTimeout bounds a single feed request.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBody caps the size of a feed document.
const DefaultMaxBody = 64 << 20

var (
	// ErrUnexpectedStatus is returned for any non-200 response.
	ErrUnexpectedStatus = eris.New("unexpected status")
	// ErrFeedTooLarge is returned when a body exceeds the size cap.
	ErrFeedTooLarge = eris.New("feed too large")
)

// Fetcher downloads feed documents.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// Options configures a Fetcher.
type Options struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	MaxBody   int64
}

// New creates a fetcher. A nil client gets a fresh one with the timeout.
func New(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "quakemap"
	}

	maxBody := opts.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	return &Fetcher{client: client, userAgent: ua, maxBody: maxBody}
}

// Fetch downloads url and decodes it as a GeoJSON FeatureCollection.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*geo.FeatureCollection, error) {
	data, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	fc, err := geo.DecodeCollection(data)
	if err != nil {
		return nil, eris.Wrapf(err, "decode %s", url)
	}

	return fc, nil
}

// Get downloads the raw body of url.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "build request %s", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", url)
	}
	// read-only request, close error is not actionable
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrUnexpectedStatus, "fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", url)
	}
	if int64(len(data)) > f.maxBody {
		return nil, eris.Wrapf(ErrFeedTooLarge, "fetch %s: over %d bytes", url, f.maxBody)
	}

	log.Debug().
		Str("url", url).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Feed downloaded")

	return data, nil
}
