// Package portal talks to the public PeopleSoft class-search portal. It owns
// the HTTP client, the request plumbing (rate limiting, caching, retries,
// proxy rotation), and the form choreography the servlet requires.
package portal

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/lionpath-labs/coursecrawl/internal/cache"
	"github.com/lionpath-labs/coursecrawl/internal/config"
	"github.com/lionpath-labs/coursecrawl/internal/proxy"
	"github.com/lionpath-labs/coursecrawl/internal/ratelimit"
	"github.com/lionpath-labs/coursecrawl/internal/retry"
	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// Client is a rate-limited, caching HTTP client for the class-search portal.
// It is safe for concurrent use by the pipeline workers.
type Client struct {
	cfg     *config.Config
	http    *resty.Client
	jar     *cookiejar.Jar
	limiter ratelimit.RateLimiter
	pages   cache.Cache
	proxies *proxy.Pool
	retry   retry.Config

	mu      sync.Mutex
	current string // active proxy URL, "" for direct
}

// New builds a portal client from the resolved configuration. The cache and
// proxy pool are optional; pass nil to disable them.
func New(cfg *config.Config, limiter ratelimit.RateLimiter, pages cache.Cache, proxies *proxy.Pool) (*Client, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("portal: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("portal: cookie jar: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("User-Agent", cfg.UserAgent)
	httpClient.SetTimeout(cfg.HTTPTimeout)
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	retryCfg := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}

	c := &Client{
		cfg:     cfg,
		http:    httpClient,
		jar:     jar,
		limiter: limiter,
		pages:   pages,
		proxies: proxies,
		retry:   retryCfg,
	}

	if proxies != nil && proxies.Len() > 0 {
		c.current = proxies.Next()
		if c.current != "" {
			httpClient.SetProxy(c.current)
		}
	}

	return c, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) (*models.Page, error) {
	return c.do(ctx, "GET", path, query, nil)
}

func (c *Client) postForm(ctx context.Context, path string, query, form map[string]string) (*models.Page, error) {
	return c.do(ctx, "POST", path, query, form)
}

// do runs one portal request through the full plumbing: cache lookup, rate
// limiter, retries with backoff, proxy rotation on transport failure.
func (c *Client) do(ctx context.Context, method, path string, query, form map[string]string) (*models.Page, error) {
	fullURL := c.requestURL(path, query)
	key := cache.RequestKey(method, fullURL, form)

	if c.pages != nil {
		if cached, ok := c.pages.Get(key); ok {
			// The cache hands out a shared pointer; copy before flagging
			// so concurrent hits never write to the same object.
			hit := *cached
			hit.FromCache = true
			return &hit, nil
		}
	}

	var page *models.Page
	err := retry.WithRetry(ctx, c.retry, func() error {
		// The limiter gates every attempt, retries included.
		if err := c.limiter.Wait(ctx, fullURL); err != nil {
			return err
		}

		req := c.http.R().SetContext(ctx).SetQueryParams(query)

		var (
			resp *resty.Response
			err  error
		)
		if method == "POST" {
			resp, err = req.SetFormData(form).Post(path)
		} else {
			resp, err = req.Get(path)
		}
		if err != nil {
			c.rotateProxy(err)
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		if resp.StatusCode() >= 400 {
			return retry.NewHTTPError(resp.StatusCode(), resp.Status(), fullURL)
		}

		c.markProxyHealthy()
		page = &models.Page{
			URL:        fullURL,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
			FetchedAt:  time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.pages != nil {
		_ = c.pages.Set(key, page, c.cfg.CacheTTL)
	}
	return page, nil
}

// requestURL builds the absolute URL with a deterministic query encoding so
// cache keys and limiter lookups are stable.
func (c *Client) requestURL(path string, query map[string]string) string {
	full := c.cfg.BaseURL + path
	if len(query) == 0 {
		return full
	}

	vals := url.Values{}
	for k, v := range query {
		vals.Set(k, v)
	}
	return full + "?" + vals.Encode()
}

// rotateProxy benches the active proxy after a transport error and moves to
// the next one in the pool.
func (c *Client) rotateProxy(cause error) {
	if c.proxies == nil || c.proxies.Len() == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != "" {
		c.proxies.MarkFailed(c.current)
		log.Warn().Str("proxy", c.current).Err(cause).Msg("Proxy failed, rotating")
	}

	c.current = c.proxies.Next()
	if c.current != "" {
		c.http.SetProxy(c.current)
	} else {
		c.http.RemoveProxy()
	}
}

func (c *Client) markProxyHealthy() {
	if c.proxies == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != "" {
		c.proxies.MarkHealthy(c.current)
	}
}
