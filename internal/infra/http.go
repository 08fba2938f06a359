package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// DefaultUserAgent is sent when no User-Agent is configured. Yahoo rejects
// requests from the Go default agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
	CookieJar bool
}

// HTTPClient wraps http.Client with a fixed User-Agent and optional cookie jar.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient creates an HTTP client.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	c := &http.Client{Timeout: opts.Timeout}
	if opts.CookieJar {
		// cookiejar.New only fails on a bad PublicSuffixList.
		jar, _ := cookiejar.New(nil)
		c.Jar = jar
	}
	return &HTTPClient{client: c, userAgent: opts.UserAgent}
}

// Get issues a GET request. On a 2xx response the caller owns the returned
// body. Other statuses close the body and return *HTTPError.
func (c *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, &HTTPError{URL: url, StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	return resp.Body, resp.StatusCode, nil
}

// GetBytes issues a GET request and reads the whole body.
func (c *HTTPClient) GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, _, err := c.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
