package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/lirany1/pickles-explorer/pkg/cache"
	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/logger"
	"github.com/lirany1/pickles-explorer/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Loader fetches report documents and keeps the raw text in a cache
type Loader struct {
	url      string
	cacheKey string
	client   *http.Client
	cache    cache.Cache
}

// Option customizes a Loader
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.client = client
	}
}

// WithCacheKey overrides the key the raw report is stored under
func WithCacheKey(key string) Option {
	return func(l *Loader) {
		l.cacheKey = key
	}
}

// New creates a loader for url. A nil cache gets an in-memory one.
func New(url string, c cache.Cache, opts ...Option) *Loader {
	if c == nil {
		c = cache.NewMemory()
	}
	l := &Loader{
		url:      url,
		cacheKey: config.DefaultCacheKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		cache:    c,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewFromConfig creates a loader using the configured URL, timeout and key
func NewFromConfig(cfg *config.Config, c cache.Cache) *Loader {
	return New(cfg.ReportURL, c,
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithCacheKey(cfg.CacheKey),
	)
}

// URL returns the remote report location
func (l *Loader) URL() string {
	return l.url
}

// Load fetches the report, parses it and caches the raw text. Every call
// fetches again and overwrites the cache entry.
func (l *Loader) Load(ctx context.Context) (*models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, &NetworkError{URL: l.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: l.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: l.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: l.url, Err: fmt.Errorf("read body: %w", err)}
	}

	doc, err := Parse(l.url, body)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"url":      l.url,
		"bytes":    len(body),
		"features": len(doc.Features),
	}).Info("Fetched fresh report")

	l.store(body)
	return doc, nil
}

// LoadFile reads a report from a local JSON file and caches its text
func (l *Loader) LoadFile(path string) (*models.Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	doc, err := Parse(path, body)
	if err != nil {
		return nil, err
	}

	l.store(body)
	return doc, nil
}

// Cached parses the last report stored in the cache
func (l *Loader) Cached() (*models.Document, error) {
	raw, ok, err := l.cache.Get(l.cacheKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	if !ok {
		return nil, ErrNotCached
	}
	return Parse("cache:"+l.cacheKey, []byte(raw))
}

// store failures leave the freshly loaded document usable
func (l *Loader) store(body []byte) {
	if err := l.cache.Set(l.cacheKey, string(body)); err != nil {
		logger.Warnf("Failed to cache report under %q: %v", l.cacheKey, err)
	}
}

// Parse decodes and validates a report document
func Parse(source string, data []byte) (*models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
