package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luxury-retail/productlist/internal/storage"
)

// Enqueue captures a request for later replay and returns the stored entry.
// body, when non-nil, is marshalled to JSON.
func Enqueue(ctx context.Context, store storage.Store, method, rawURL string, headers map[string]string, body any) (storage.QueuedRequest, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return storage.QueuedRequest{}, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return storage.QueuedRequest{}, fmt.Errorf("url %q: scheme must be http or https", rawURL)
	}

	req := storage.QueuedRequest{
		ID:        uuid.NewString(),
		URL:       u.String(),
		Method:    method,
		Headers:   headers,
		CreatedAt: time.Now().UTC(),
	}
	if body != nil {
		switch b := body.(type) {
		case json.RawMessage:
			if !json.Valid(b) {
				return storage.QueuedRequest{}, fmt.Errorf("body is not valid json")
			}
			req.Body = b
		default:
			encoded, err := json.Marshal(body)
			if err != nil {
				return storage.QueuedRequest{}, fmt.Errorf("encode body: %w", err)
			}
			req.Body = encoded
		}
	}
	if err := store.Enqueue(ctx, req); err != nil {
		return storage.QueuedRequest{}, fmt.Errorf("enqueue request: %w", err)
	}
	return req, nil
}
