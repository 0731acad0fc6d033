package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Ensure Client implements Features at compile time.
var _ Features = (*Client)(nil)

// Client talks to a native-bridge daemon over its HTTP JSON API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string

	mu       sync.RWMutex
	platform string
}

const (
	defaultBridgeBind = "127.0.0.1:7490"
	defaultUserAgent  = "productlist/0.1"
	defaultPlatform   = "web"
	requestTimeout    = 10 * time.Second
)

// NewClient builds a Client for the bridge at bind (host:port or URL). platform, when
// set, pins the value Platform reports; otherwise it is learned from CheckAllPermissions.
func NewClient(bind, platform string) (*Client, error) {
	base, err := parseBaseURL(bind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		platform:  strings.TrimSpace(platform),
	}, nil
}

type grantResponse struct {
	Granted bool `json:"granted"`
}

type pictureResponse struct {
	ImageURL string `json:"imageUrl"`
}

// CheckAllPermissions retrieves every capability's permission state.
func (c *Client) CheckAllPermissions(ctx context.Context) (Permissions, error) {
	if c == nil {
		return Permissions{}, fmt.Errorf("client is nil")
	}
	var payload Permissions
	if err := c.do(ctx, http.MethodGet, "/api/permissions", nil, &payload); err != nil {
		return Permissions{}, err
	}
	if p := strings.TrimSpace(payload.Platform); p != "" {
		c.mu.Lock()
		if c.platform == "" {
			c.platform = p
		}
		c.mu.Unlock()
	}
	return payload, nil
}

func (c *Client) CheckCameraPermissions(ctx context.Context) (bool, error) {
	return c.check(ctx, Camera)
}

func (c *Client) RequestCameraPermissions(ctx context.Context) (bool, error) {
	return c.request(ctx, Camera)
}

func (c *Client) CheckLocationPermissions(ctx context.Context) (bool, error) {
	return c.check(ctx, Location)
}

func (c *Client) RequestLocationPermissions(ctx context.Context) (bool, error) {
	return c.request(ctx, Location)
}

// TakePicture asks the bridge to open the camera and returns the image URL.
func (c *Client) TakePicture(ctx context.Context, opts PictureOptions) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	var payload pictureResponse
	if err := c.do(ctx, http.MethodPost, "/api/camera/picture", opts, &payload); err != nil {
		return "", err
	}
	return payload.ImageURL, nil
}

// SendLocalNotification schedules a notification on the device.
func (c *Client) SendLocalNotification(ctx context.Context, n Notification) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/api/notifications", n, nil)
}

// GetCurrentLocation retrieves the current position.
func (c *Client) GetCurrentLocation(ctx context.Context) (Position, error) {
	if c == nil {
		return Position{}, fmt.Errorf("client is nil")
	}
	var payload Position
	if err := c.do(ctx, http.MethodGet, "/api/location", nil, &payload); err != nil {
		return Position{}, err
	}
	return payload, nil
}

// Platform returns the pinned or last reported platform, "web" when unknown.
func (c *Client) Platform() string {
	if c == nil {
		return defaultPlatform
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.platform == "" {
		return defaultPlatform
	}
	return c.platform
}

func (c *Client) check(ctx context.Context, capability Capability) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("client is nil")
	}
	var payload grantResponse
	if err := c.do(ctx, http.MethodGet, "/api/permissions/"+string(capability), nil, &payload); err != nil {
		return false, err
	}
	return payload.Granted, nil
}

func (c *Client) request(ctx context.Context, capability Capability) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("client is nil")
	}
	var payload grantResponse
	if err := c.do(ctx, http.MethodPost, "/api/permissions/"+string(capability)+"/request", nil, &payload); err != nil {
		return false, err
	}
	return payload.Granted, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("bridge %s: %w", rel.Path, ErrPermissionDenied)
	}
	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("bridge %s returned status %d: %s", rel.Path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("bridge %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(bind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(bind)
	if trimmed == "" {
		trimmed = defaultBridgeBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse bridge url %q: %w", bind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
