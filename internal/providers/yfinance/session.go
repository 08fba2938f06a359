package yfinance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finlookup/internal/infra"
)

const crumbTTL = time.Hour

// session holds the Yahoo cookie jar and crumb. Yahoo's v10 endpoints
// require both: cookies are seeded from fc.yahoo.com, then the crumb is
// read from /v1/test/getcrumb with those cookies.
type session struct {
	client    *infra.HTTPClient
	baseURL   string
	cookieURL string
	log       zerolog.Logger

	mu       sync.Mutex
	crumb    string
	crumbExp time.Time
}

func newSession(client *infra.HTTPClient, baseURL, cookieURL string, log zerolog.Logger) *session {
	return &session{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		cookieURL: cookieURL,
		log:       log,
	}
}

// Crumb returns the cached crumb, fetching a new one when expired.
func (s *session) Crumb(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.crumb != "" && time.Now().Before(s.crumbExp) {
		return s.crumb, nil
	}

	// fc.yahoo.com answers 404 but still sets the session cookie.
	if body, _, err := s.client.Get(ctx, s.cookieURL, nil); err == nil {
		body.Close()
	} else {
		var httpErr *infra.HTTPError
		if !errors.As(err, &httpErr) {
			return "", fmt.Errorf("seed cookies: %w", err)
		}
	}

	data, err := s.client.GetBytes(ctx, s.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(data))
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", errors.New("fetch crumb: unexpected crumb response")
	}

	s.crumb = crumb
	s.crumbExp = time.Now().Add(crumbTTL)
	s.log.Debug().Str("crumb", crumb[:min(4, len(crumb))]+"...").Msg("yahoo crumb obtained")
	return crumb, nil
}

// Reset drops the cached crumb.
func (s *session) Reset() {
	s.mu.Lock()
	s.crumb = ""
	s.crumbExp = time.Time{}
	s.mu.Unlock()
}

// getJSON performs GET baseURL+path?query and decodes the response into
// dest. With withCrumb the crumb is appended, and a 401 resets it and
// retries once.
func (s *session) getJSON(ctx context.Context, path string, query url.Values, withCrumb bool, dest any) error {
	err := s.doJSON(ctx, path, query, withCrumb, dest)
	if err == nil || !withCrumb {
		return err
	}
	var httpErr *infra.HTTPError
	if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		s.log.Debug().Int("status", httpErr.StatusCode).Msg("yahoo rejected crumb, refreshing")
		s.Reset()
		return s.doJSON(ctx, path, query, withCrumb, dest)
	}
	return err
}

func (s *session) doJSON(ctx context.Context, path string, query url.Values, withCrumb bool, dest any) error {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if withCrumb {
		crumb, err := s.Crumb(ctx)
		if err != nil {
			return err
		}
		q.Set("crumb", crumb)
	}

	u := s.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	data, err := s.client.GetBytes(ctx, u, jsonHeaders())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}
