package cdn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/storefront-admin/internal/storage"
)

// HeadClient performs HEAD requests. *httpclient.CircuitBreakerClient
// satisfies it.
type HeadClient interface {
	Head(ctx context.Context, url string) (*http.Response, error)
}

// Storage resolves asset keys against a CDN base URL.
type Storage struct {
	base   *url.URL
	client HeadClient
}

// New parses baseURL, which must be an absolute http or https URL.
func New(baseURL string, client HeadClient) (*Storage, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse asset base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("asset base URL %q must be absolute http or https", baseURL)
	}
	return &Storage{base: u, client: client}, nil
}

// URL joins key onto the base URL, escaping each path segment.
func (s *Storage) URL(_ context.Context, key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", fmt.Errorf("resolve %q: %w", key, err)
	}
	return s.base.JoinPath(strings.Split(key, "/")...).String(), nil
}

// Exists issues a HEAD for key. 404 and 410 mean absent; other non-2xx
// statuses are errors.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	target, err := s.URL(ctx, key)
	if err != nil {
		return false, nil
	}

	resp, err := s.client.Head(ctx, target)
	if err != nil {
		return false, fmt.Errorf("check asset %q: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("check asset %q: unexpected status %d", key, resp.StatusCode)
	}
}
