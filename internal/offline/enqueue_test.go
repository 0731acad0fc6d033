package offline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luxury-retail/productlist/internal/storage"
)

func TestEnqueue_AssignsIDAndEncodesBody(t *testing.T) {
	store := storage.NewMemory()
	req, err := Enqueue(context.Background(), store, "post", "https://api.example.com/wishlist", map[string]string{"X-App": "app1"}, map[string]string{"productId": "lx-001"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		t.Fatalf("ID = %q, want uuid: %v", req.ID, err)
	}
	if req.Method != "POST" {
		t.Fatalf("Method = %q, want POST", req.Method)
	}
	if string(req.Body) != `{"productId":"lx-001"}` {
		t.Fatalf("Body = %s, want encoded map", req.Body)
	}
	if req.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt is zero")
	}

	queue, _ := store.GetQueuedRequests(context.Background())
	if len(queue) != 1 || queue[0].ID != req.ID {
		t.Fatalf("queue = %v, want the new entry", queue)
	}
}

func TestEnqueue_RawBodyMustBeValid(t *testing.T) {
	store := storage.NewMemory()
	if _, err := Enqueue(context.Background(), store, "POST", "https://x.test", nil, json.RawMessage(`{bad`)); err == nil {
		t.Fatalf("Enqueue returned nil error for invalid raw body")
	}
	req, err := Enqueue(context.Background(), store, "", "https://x.test", nil, json.RawMessage(`[1]`))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if req.Method != "POST" || string(req.Body) != "[1]" {
		t.Fatalf("req = %+v, want default POST with raw body", req)
	}
}

func TestEnqueue_RejectsNonHTTPURL(t *testing.T) {
	store := storage.NewMemory()
	for _, raw := range []string{"", "ftp://files.example.com", "not a url"} {
		if _, err := Enqueue(context.Background(), store, "GET", raw, nil, nil); err == nil {
			t.Fatalf("Enqueue(%q) returned nil error", raw)
		}
	}
}

func TestStartSchedule(t *testing.T) {
	d := NewDrainer(storage.NewMemory(), Options{Logger: zerolog.Nop()})

	s, err := StartSchedule(context.Background(), "", d, zerolog.Nop())
	if err != nil || s != nil {
		t.Fatalf("StartSchedule(empty) = %v, %v; want nil, nil", s, err)
	}
	s.Stop()

	if _, err := StartSchedule(context.Background(), "every tuesday", d, zerolog.Nop()); err == nil {
		t.Fatalf("StartSchedule returned nil error for invalid spec")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s, err = StartSchedule(ctx, "@every 1h", d, zerolog.Nop())
	if err != nil {
		t.Fatalf("StartSchedule: %v", err)
	}
	cancel()
	s.Stop()
}
