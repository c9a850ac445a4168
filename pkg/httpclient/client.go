// Package httpclient provides the outbound HTTP client shared by all upstream repositories:
// retries with backoff on transient failures and a TTL cache for successful GET responses.
package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"weather-dashboard/pkg/httpcache"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/metrics"
)

const CacheHeader = "X-Cache"

type Config struct {
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	UserAgent    string
}

type Client struct {
	rc      *resty.Client
	cache   *httpcache.Store
	metrics *metrics.Metrics
	l       *logger.Logger
}

// New builds a client. cache and m may be nil.
func New(cfg Config, cache *httpcache.Store, m *metrics.Metrics, l *logger.Logger) *Client {
	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		l.Debug("upstream response", map[string]any{
			"method":   resp.Request.Method,
			"url":      withoutQuery(resp.Request.URL),
			"status":   resp.StatusCode(),
			"duration": resp.Time().String(),
			"attempt":  resp.Request.Attempt,
			"bytes":    len(resp.Body()),
		})
		return nil
	})

	return &Client{
		rc:      rc,
		cache:   cache,
		metrics: m,
		l:       l,
	}
}

// Do sends req and returns a fully buffered response. Successful GET responses are served
// from the cache while fresh; those carry the X-Cache: HIT header.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.String()
	cacheable := c.cache != nil && req.Method == http.MethodGet

	if cacheable {
		cached, ok, err := c.cache.Get(key)
		if err != nil {
			c.l.Warning("cache lookup failed", map[string]any{"key": key, "err": err})
		}
		c.metrics.ObserveCache(ok)
		if ok {
			return cachedResponse(req, cached), nil
		}
	}

	r := c.rc.R().
		SetContext(req.Context()).
		SetHeaderMultiValues(req.Header)
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = req.Body.Close()
		r.SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		c.metrics.ObserveUpstream(req.URL.Host, 0)
		return nil, fmt.Errorf("%s %s: %w", req.Method, withoutQuery(req.URL.String()), err)
	}
	c.metrics.ObserveUpstream(req.URL.Host, resp.StatusCode())

	if cacheable && resp.StatusCode() == http.StatusOK {
		if err := c.cache.Set(key, httpcache.Response{
			StatusCode: resp.StatusCode(),
			Header:     resp.Header(),
			Body:       resp.Body(),
		}); err != nil {
			c.l.Warning("cache store failed", map[string]any{"key": key, "err": err})
		}
	}

	return &http.Response{
		Status:        resp.Status(),
		StatusCode:    resp.StatusCode(),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        resp.Header(),
		Body:          io.NopCloser(bytes.NewReader(resp.Body())),
		ContentLength: int64(len(resp.Body())),
		Request:       req,
	}, nil
}

// withoutQuery drops the query string, which may carry API keys.
func withoutQuery(rawURL string) string {
	base, _, _ := strings.Cut(rawURL, "?")
	return base
}

func cachedResponse(req *http.Request, cached *httpcache.Response) *http.Response {
	header := cached.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(CacheHeader, "HIT")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cached.StatusCode, http.StatusText(cached.StatusCode)),
		StatusCode:    cached.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}
}
