package soundcloud

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultAPIBaseURL is the catalog API host.
	DefaultAPIBaseURL = "https://api-v2.soundcloud.com"

	// BatchSize is the maximum number of ids sent in one /tracks request.
	BatchSize = 100

	// appURLProperty is the meta tag carrying "soundcloud://<kind>:<id>".
	appURLProperty = "twitter:app:url:googleplay"
)

// DefaultScrapeURLs are public pages known to load the web player bundles
// that embed the client id.
var DefaultScrapeURLs = []string{
	"https://soundcloud.com/mt-marcy/cold-nights",
}

// Fetcher retrieves the bytes behind a URL. Implementations must fail on
// non-2xx responses and must be safe for concurrent use.
//
// internal/http.Client satisfies this interface.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// TagWriter embeds metadata into an assembled MP3 held by sink. artwork may be
// nil. On return the sink holds the complete tagged file.
type TagWriter interface {
	WriteTags(sink io.ReadWriteSeeker, track *Track, artwork []byte) error
}

// Config configures a Client. Only Fetcher is required.
type Config struct {
	// Fetcher performs every network request.
	Fetcher Fetcher

	// ClientID presets the credential and skips discovery.
	ClientID string

	// ScrapeURLs are the candidate pages for discovery. Defaults to
	// DefaultScrapeURLs.
	ScrapeURLs []string

	// APIBaseURL overrides the catalog host. Defaults to DefaultAPIBaseURL.
	APIBaseURL string

	// Tagger embeds ID3 metadata after stream reconstruction. Tagging is
	// skipped when nil.
	Tagger TagWriter

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Client resolves SoundCloud URLs and reconstructs streams.
//
// The client id is discovered lazily on first use and then reused for every
// catalog request. Concurrent first callers share a single discovery. A Client
// is safe for concurrent use.
type Client struct {
	fetcher    Fetcher
	scrapeURLs []string
	apiBaseURL string
	tagger     TagWriter
	logger     *zap.Logger

	mu        sync.RWMutex
	clientID  string
	discovery singleflight.Group
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("soundcloud: fetcher is required")
	}

	scrapeURLs := cfg.ScrapeURLs
	if len(scrapeURLs) == 0 {
		scrapeURLs = DefaultScrapeURLs
	}
	apiBaseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		fetcher:    cfg.Fetcher,
		scrapeURLs: append([]string(nil), scrapeURLs...),
		apiBaseURL: apiBaseURL,
		tagger:     cfg.Tagger,
		logger:     logger.Named("soundcloud"),
		clientID:   cfg.ClientID,
	}, nil
}

// ClientID returns the credential, discovering it on first call.
//
// Failed discoveries are not cached; the next call tries again.
func (c *Client) ClientID(ctx context.Context) (string, error) {
	c.mu.RLock()
	id := c.clientID
	c.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	ch := c.discovery.DoChan("client_id", func() (any, error) {
		c.mu.RLock()
		id := c.clientID
		c.mu.RUnlock()
		if id != "" {
			return id, nil
		}

		// Detached so one caller giving up does not fail the others.
		id, err := c.discoverClientID(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.clientID = id
		c.mu.Unlock()
		c.logger.Debug("client id discovered")
		return id, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// InvalidateClientID drops the held credential so the next request
// rediscovers it. Use it after the catalog starts rejecting requests with 401.
func (c *Client) InvalidateClientID() {
	c.mu.Lock()
	c.clientID = ""
	c.mu.Unlock()
}

func (c *Client) apiURL(path string) string {
	return c.apiBaseURL + path
}
