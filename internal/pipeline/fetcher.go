package pipeline

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/medwatch/claimscan/internal/cache"
	"github.com/medwatch/claimscan/internal/model"
	"github.com/medwatch/claimscan/internal/util"
	"github.com/medwatch/claimscan/internal/worker"
)

// Fetcher retrieves page HTML for analysis, with caching, robots.txt
// respect and per-host rate limiting
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64

	pageCache     cache.Cache
	robots        *util.RobotsChecker
	limiter       *worker.Limiter
	respectRobots bool
}

// NewFetcher creates a Fetcher from HTTP and cache configuration
func NewFetcher(cfg model.HTTPConfig, cacheCfg model.CacheConfig) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var pageCache cache.Cache
	if cacheCfg.Enabled && cacheCfg.Dir != "" {
		pageCache = cache.NewLayeredCache(cacheCfg.MemoryTTL, cacheCfg.Dir, cacheCfg.DiskTTL)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:     cfg.UserAgent,
		maxBytes:      cfg.MaxBodyBytes,
		pageCache:     pageCache,
		robots:        util.NewRobotsChecker(cfg.UserAgent, 10*time.Second),
		limiter:       worker.NewLimiter(rps, 2),
		respectRobots: cfg.RespectRobots,
	}
}

// FetchResult contains the fetched HTML and where it finally came from
type FetchResult struct {
	HTML      string
	FinalURL  string
	FromCache bool
}

// Fetch retrieves HTML for the given URL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.pageCache != nil {
		if data, found := f.pageCache.Get(cache.PageKey(rawURL)); found {
			return &FetchResult{HTML: string(data), FinalURL: rawURL, FromCache: true}, nil
		}
	}

	if f.respectRobots {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return nil, fmt.Errorf("robots.txt disallows fetching %s", rawURL)
		}
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	} else if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, f.maxBytes)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()

	if f.pageCache != nil {
		if err := f.pageCache.Set(cache.PageKey(rawURL), body, 0); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: page cache write failed: %v\n", err)
		}
	}

	return &FetchResult{
		HTML:     string(body),
		FinalURL: finalURL,
	}, nil
}
