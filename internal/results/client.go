package results

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/paddleworks/slalomboard/internal/feed"
)

// ClientConfig points the lookup client at a results service.
type ClientConfig struct {
	// BaseURL is the service root, e.g. "http://timing.local:8130".
	BaseURL string
	// Timeout bounds one request when the caller's context carries no
	// deadline. Zero falls back to 5s.
	Timeout time.Duration
	// UserAgent overrides the default request identity.
	UserAgent string
}

// Client fetches first-run standings over HTTP. It satisfies Lookup.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	http      *fasthttp.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURLRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "slalomboard"
	}
	return &Client{
		baseURL:   base,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		http: &fasthttp.Client{
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxConnsPerHost:     4,
			MaxIdleConnDuration: time.Minute,
		},
	}, nil
}

// FirstRun fetches the run-1 standings for classID from
// GET {base}/classes/{classID}/runs/1/results.
func (c *Client) FirstRun(ctx context.Context, classID string) ([]feed.ResultRow, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, fmt.Errorf("%w: empty class id", ErrLookupFailed)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/classes/%s/runs/1/results", c.baseURL, url.PathEscape(classID)))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent(c.userAgent)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("results: fetch first run %s: %w", classID, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: %s status %d", ErrLookupFailed, classID, resp.StatusCode())
	}

	var payload struct {
		Rows []feed.ResultRow `json:"rows"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("results: decode first run %s: %w", classID, err)
	}
	return payload.Rows, nil
}
