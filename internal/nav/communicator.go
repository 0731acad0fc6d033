package nav

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnknownApp is returned when no base URL is configured for the target app.
var ErrUnknownApp = errors.New("unknown app")

// Communicator opens another app of the suite at a path with some state.
type Communicator interface {
	NavigateToApp(ctx context.Context, appID, path string, state map[string]any) error
}

// Ensure HTTPCommunicator implements Communicator at compile time.
var _ Communicator = (*HTTPCommunicator)(nil)

const navigateTimeout = 5 * time.Second

// HTTPCommunicator delivers navigation requests by POSTing to each app's /navigate
// endpoint.
type HTTPCommunicator struct {
	apps map[string]*url.URL
	http *http.Client
}

type navigateRequest struct {
	Path  string         `json:"path"`
	State map[string]any `json:"state,omitempty"`
}

// NewHTTPCommunicator builds a communicator from app id to base URL.
func NewHTTPCommunicator(apps map[string]string) (*HTTPCommunicator, error) {
	parsed := make(map[string]*url.URL, len(apps))
	for id, raw := range apps {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse app %s url %q: %w", id, raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("app %s url %q: scheme must be http or https", id, raw)
		}
		parsed[id] = u
	}
	return &HTTPCommunicator{
		apps: parsed,
		http: &http.Client{Timeout: navigateTimeout},
	}, nil
}

// NavigateToApp asks appID to open path with state.
func (c *HTTPCommunicator) NavigateToApp(ctx context.Context, appID, path string, state map[string]any) error {
	base, ok := c.apps[appID]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownApp, appID)
	}
	payload, err := json.Marshal(navigateRequest{Path: path, State: state})
	if err != nil {
		return fmt.Errorf("encode navigation: %w", err)
	}
	target := base.ResolveReference(&url.URL{Path: strings.TrimSuffix(base.Path, "/") + "/navigate"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("app %s navigate returned status %d", appID, resp.StatusCode)
	}
	return nil
}
