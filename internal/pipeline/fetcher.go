package pipeline

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/sportcheck/internal/cache"
	"github.com/ppiankov/sportcheck/internal/config"
	"github.com/ppiankov/sportcheck/internal/extract"
	"github.com/ppiankov/sportcheck/internal/metrics"
	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/ppiankov/sportcheck/internal/util"
	"github.com/ppiankov/sportcheck/internal/worker"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// Fetcher downloads evidence pages and extracts their paragraph text
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	policy     resilience.Policy

	robots   *util.RobotsChecker // nil skips robots.txt checks
	limiter  *worker.Limiter     // nil disables per-domain limiting
	cache    cache.Cache
	cacheTTL time.Duration
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithRobots enables robots.txt checks
func WithRobots(r *util.RobotsChecker) FetcherOption {
	return func(f *Fetcher) { f.robots = r }
}

// WithLimiter enables per-domain rate limiting
func WithLimiter(l *worker.Limiter) FetcherOption {
	return func(f *Fetcher) { f.limiter = l }
}

// WithCache stores extracted page text in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		f.cacheTTL = ttl
	}
}

// NewFetcher creates a Fetcher from fetch settings
func NewFetcher(cfg config.FetchConfig, opts ...FetcherOption) *Fetcher {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return eris.New("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		policy:    resilience.DefaultPolicy(timeout),
		cache:     cache.NoopCache{},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FetchResult contains the fetched HTML and metadata
type FetchResult struct {
	HTML        string
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Fetch retrieves and decodes an HTML page in a single attempt
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := eris.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, eris.Errorf("unsupported content type: %s", contentType)
	}

	// Decode to UTF-8 using the declared or sniffed charset
	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), contentType)
	if err != nil {
		return nil, eris.Wrap(err, "decode charset")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}

	return &FetchResult{
		HTML:        string(data),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry bounds each attempt by the fetch timeout and retries once
// on transient failures
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	return resilience.Call(ctx, f.policy, "fetch page", func(ctx context.Context) (*FetchResult, error) {
		return f.Fetch(ctx, rawURL)
	})
}

// PageText returns the paragraph text of the page at rawURL, or "" when the
// page cannot be fetched, is disallowed by robots.txt or has no paragraphs
func (f *Fetcher) PageText(ctx context.Context, rawURL string) string {
	key := cache.Key("page", rawURL)
	if data, ok := f.cache.Get(key); ok {
		metrics.RecordPageFetch("cached")
		return string(data)
	}

	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil || !allowed {
			metrics.RecordPageFetch("robots_denied")
			zap.L().Debug("page fetch blocked by robots.txt", zap.String("url", rawURL), zap.Error(err))
			return ""
		}
		if f.limiter != nil {
			f.limiter.ApplyCrawlDelay(rawURL, crawlDelay)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			metrics.RecordPageFetch("error")
			return ""
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		metrics.RecordPageFetch("error")
		zap.L().Debug("page fetch failed", zap.String("url", rawURL), zap.Error(err))
		return ""
	}

	text, err := extract.PageTextFor(strings.NewReader(result.HTML), result.FinalURL)
	if err != nil {
		metrics.RecordPageFetch("error")
		zap.L().Debug("page parse failed", zap.String("url", rawURL), zap.Error(err))
		return ""
	}

	if text == "" {
		metrics.RecordPageFetch("empty")
		return ""
	}

	metrics.RecordPageFetch("ok")
	if err := f.cache.Set(key, []byte(text), f.cacheTTL); err != nil {
		zap.L().Debug("page cache write failed", zap.String("url", rawURL), zap.Error(err))
	}
	return text
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	}
	return false
}
