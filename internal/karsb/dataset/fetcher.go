// Package dataset retrieves the hosted JSON record arrays the query pipeline
// reasons over.
//
// A dataset is addressed by (domain, period). Fetching is two network calls: a
// HEAD to confirm the file exists and a GET for its content. Both outcomes are
// memoized in bounded caches for the life of the process, since published
// months never change. Every failure, whether a missing file, a transport
// error, or a malformed payload, surfaces as ErrNotAvailable.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"

	"github.com/bdobrica/karsb/common/retry"
	"github.com/bdobrica/karsb/internal/karsb/clan"
	"github.com/bdobrica/karsb/internal/karsb/observability"
)

// ErrNotAvailable means no usable dataset exists for the requested period.
var ErrNotAvailable = errors.New("dataset not available")

// recordsSchema accepts an array of flat objects whose name, when present, is
// a string or null.
const recordsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"name": {"type": ["string", "null"]}
		}
	}
}`

// maxBodyBytes bounds a single dataset download.
const maxBodyBytes = 8 << 20

// Config holds the fetcher settings.
type Config struct {
	BaseURL          string
	HeadTimeout      time.Duration
	GetTimeout       time.Duration
	ExistsCacheSize  int
	ContentCacheSize int
	// Attempts is the number of GET attempts on transient failures.
	Attempts int
	// FallbackMonth and FallbackRange are loaded instead of a missing
	// single-month or range period. Zero values disable the fallback.
	FallbackMonth clan.Period
	FallbackRange clan.Period
	// HTTPClient defaults to a plain http.Client.
	HTTPClient *http.Client
}

// DefaultConfig mirrors the published data repository's expectations.
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		HeadTimeout:      3 * time.Second,
		GetTimeout:       5 * time.Second,
		ExistsCacheSize:  128,
		ContentCacheSize: 64,
		Attempts:         1,
	}
}

// Result is a successful fetch. When the requested period was missing and a
// fallback was configured, UsedFallback is set and Effective names the period
// actually loaded.
type Result struct {
	Records      []clan.Record
	Requested    clan.Period
	Effective    clan.Period
	UsedFallback bool
	URL          string
}

// Stats is a snapshot of cache usage.
type Stats struct {
	ExistsEntries  int    `json:"exists_entries"`
	ContentEntries int    `json:"content_entries"`
	Hits           uint64 `json:"hits"`
	Misses         uint64 `json:"misses"`
}

// Fetcher loads datasets over HTTP. It is safe for concurrent use.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	schema  *jsonschema.Schema
	exists  *lru.Cache[string, bool]
	content *lru.Cache[string, []clan.Record]
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a Fetcher. Zero fields in cfg take DefaultConfig values.
func New(cfg Config) (*Fetcher, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.HeadTimeout <= 0 {
		cfg.HeadTimeout = def.HeadTimeout
	}
	if cfg.GetTimeout <= 0 {
		cfg.GetTimeout = def.GetTimeout
	}
	if cfg.ExistsCacheSize <= 0 {
		cfg.ExistsCacheSize = def.ExistsCacheSize
	}
	if cfg.ContentCacheSize <= 0 {
		cfg.ContentCacheSize = def.ContentCacheSize
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	exists, err := lru.New[string, bool](cfg.ExistsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create exists cache: %w", err)
	}
	content, err := lru.New[string, []clan.Record](cfg.ContentCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create content cache: %w", err)
	}
	schema, err := jsonschema.CompileString("records.json", recordsSchema)
	if err != nil {
		return nil, fmt.Errorf("compile records schema: %w", err)
	}

	return &Fetcher{
		cfg:     cfg,
		client:  client,
		schema:  schema,
		exists:  exists,
		content: content,
	}, nil
}

// URL returns the address of the dataset for (d, p), or "" for an unknown
// domain or empty period.
func (f *Fetcher) URL(d clan.Domain, p clan.Period) string {
	u, err := BuildURL(f.cfg.BaseURL, d, p)
	if err != nil {
		return ""
	}
	return u
}

// Fetch loads the records for (d, p). If that dataset is unavailable and a
// fallback of the same period shape is configured, the fallback is loaded
// instead. Errors wrap ErrNotAvailable.
func (f *Fetcher) Fetch(ctx context.Context, d clan.Domain, p clan.Period) (*Result, error) {
	url, err := BuildURL(f.cfg.BaseURL, d, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}

	records, err := f.load(ctx, url)
	if err == nil {
		return &Result{Records: records, Requested: p, Effective: p, URL: url}, nil
	}

	fb := f.fallbackFor(p)
	if fb.IsZero() || fb == p {
		return nil, err
	}

	fbURL, ferr := BuildURL(f.cfg.BaseURL, d, fb)
	if ferr != nil {
		return nil, err
	}
	records, ferr = f.load(ctx, fbURL)
	if ferr != nil {
		return nil, err
	}
	observability.WithTrace(ctx).Info("dataset: using fallback period",
		"domain", d, "requested", p.String(), "effective", fb.String())
	return &Result{Records: records, Requested: p, Effective: fb, UsedFallback: true, URL: fbURL}, nil
}

func (f *Fetcher) fallbackFor(p clan.Period) clan.Period {
	if p.Kind == clan.Range {
		return f.cfg.FallbackRange
	}
	return f.cfg.FallbackMonth
}

// Stats reports current cache usage.
func (f *Fetcher) Stats() Stats {
	return Stats{
		ExistsEntries:  f.exists.Len(),
		ContentEntries: f.content.Len(),
		Hits:           f.hits.Load(),
		Misses:         f.misses.Load(),
	}
}

func (f *Fetcher) load(ctx context.Context, url string) ([]clan.Record, error) {
	if records, ok := f.content.Get(url); ok {
		f.hits.Add(1)
		observability.WithTrace(ctx).Debug("dataset: cache hit", "url", url)
		return records, nil
	}
	f.misses.Add(1)

	// The shared download must outlive any single caller, so it runs detached
	// from cancellation and each caller waits on its own context.
	ch := f.group.DoChan(url, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		ok, err := f.checkExists(ctx, url)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotAvailable, url)
		}
		records, err := f.download(ctx, url)
		if err != nil {
			return nil, err
		}
		f.content.Add(url, records)
		return records, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]clan.Record), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrNotAvailable, ctx.Err())
	}
}

// checkExists issues a HEAD request. Definitive answers are cached; transport
// failures are not.
func (f *Fetcher) checkExists(ctx context.Context, url string) (bool, error) {
	if ok, hit := f.exists.Get(url); hit {
		return ok, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.HeadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		observability.WithTrace(ctx).Warn("dataset: existence check failed", "url", url, "err", err)
		return false, fmt.Errorf("%w: head %s: %v", ErrNotAvailable, url, err)
	}
	resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK
	f.exists.Add(url, ok)
	return ok, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]clan.Record, error) {
	var body []byte
	err := retry.Do(ctx, retry.Config{
		MaxAttempts:  f.cfg.Attempts,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     time.Second,
	}, func() error {
		b, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		observability.WithTrace(ctx).Warn("dataset: download failed", "url", url, "err", err)
		return nil, fmt.Errorf("%w: get %s: %v", ErrNotAvailable, url, err)
	}

	records, err := f.decode(body)
	if err != nil {
		observability.WithTrace(ctx).Warn("dataset: malformed payload", "url", url, "err", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAvailable, url, err)
	}
	return records, nil
}

// get performs one GET. Client errors (4xx) are permanent; transport errors
// and 5xx responses may be retried.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.GetTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode < 500 {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// decode parses and validates a dataset payload. Numbers are kept as
// json.Number so that coercion happens per field in the resolver.
func (f *Fetcher) decode(body []byte) ([]clan.Record, error) {
	var doc any
	if err := decodeJSON(body, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := f.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	rows := doc.([]any)
	records := make([]clan.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, clan.Record(row.(map[string]any)))
	}
	return records, nil
}
