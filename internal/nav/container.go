package nav

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrOriginNotAllowed is returned when the container's origin is not in the allow list.
var ErrOriginNotAllowed = errors.New("container origin not allowed")

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

// Container is the channel to the hosting container application. Messages are
// written to a websocket and never wait for a reply.
type Container struct {
	url     string
	origin  string
	allowed map[string]struct{}
	dialer  websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewContainer builds a channel to the container listening at rawURL (ws, wss, http
// or https). allowedOrigins lists the origins messages may be sent to; the container's
// own origin must appear there for Post to succeed.
func NewContainer(rawURL string, allowedOrigins []string) (*Container, error) {
	wsURL, origin, err := parseContainerURL(rawURL)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = normalizeOrigin(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &Container{
		url:     wsURL,
		origin:  origin,
		allowed: allowed,
		dialer:  websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}, nil
}

// Origin returns the container origin checked against the allow list.
func (c *Container) Origin() string {
	return c.origin
}

// Post sends msg to the container. The connection is dialed on first use and
// redialed once if a write on a stale connection fails.
func (c *Container) Post(ctx context.Context, msg Message) error {
	if _, ok := c.allowed[c.origin]; !ok {
		return fmt.Errorf("%w: %s", ErrOriginNotAllowed, c.origin)
	}
	if msg.Version == 0 {
		msg.Version = SchemaVersion
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := false
	if c.conn == nil {
		if err := c.dialLocked(ctx); err != nil {
			return err
		}
		fresh = true
	}
	err := c.writeLocked(msg)
	if err == nil || fresh {
		return err
	}
	c.closeLocked()
	if err := c.dialLocked(ctx); err != nil {
		return err
	}
	return c.writeLocked(msg)
}

// Close shuts the connection down.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout),
	)
	c.closeLocked()
	return nil
}

func (c *Container) dialLocked(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial container: %w", err)
	}
	c.conn = conn
	go discardReads(conn)
	return nil
}

func (c *Container) writeLocked(msg Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("post container message: %w", err)
	}
	return nil
}

func (c *Container) closeLocked() {
	_ = c.conn.Close()
	c.conn = nil
}

// discardReads keeps control frames flowing; the container never replies.
func discardReads(conn *websocket.Conn) {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func parseContainerURL(rawURL string) (wsURL, origin string, err error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", "", fmt.Errorf("container url required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("parse container url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("container url %q: host required", rawURL)
	}
	switch u.Scheme {
	case "ws", "http":
		u.Scheme = "ws"
		origin = "http://" + u.Host
	case "wss", "https":
		u.Scheme = "wss"
		origin = "https://" + u.Host
	default:
		return "", "", fmt.Errorf("container url %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	return u.String(), strings.ToLower(origin), nil
}

func normalizeOrigin(o string) string {
	o = strings.ToLower(strings.TrimSpace(o))
	return strings.TrimSuffix(o, "/")
}
