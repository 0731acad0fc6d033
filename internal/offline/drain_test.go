package offline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/luxury-retail/productlist/internal/storage"
)

type recordingObserver struct {
	mu       sync.Mutex
	replayed []string
	failed   []string
	drains   int
}

func (o *recordingObserver) Replayed(req storage.QueuedRequest) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replayed = append(o.replayed, req.ID)
}

func (o *recordingObserver) ReplayFailed(req storage.QueuedRequest, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, req.ID)
}

func (o *recordingObserver) Drained(Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drains++
}

func enqueueAll(t *testing.T, store storage.Store, reqs ...storage.QueuedRequest) {
	t.Helper()
	for _, r := range reqs {
		if err := store.Enqueue(context.Background(), r); err != nil {
			t.Fatalf("Enqueue(%s): %v", r.ID, err)
		}
	}
}

func TestDrain_FailedRequestStaysQueued(t *testing.T) {
	var order []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/two" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	enqueueAll(t, store,
		storage.QueuedRequest{ID: "1", URL: server.URL + "/one", Method: "POST"},
		storage.QueuedRequest{ID: "2", URL: server.URL + "/two", Method: "POST"},
		storage.QueuedRequest{ID: "3", URL: server.URL + "/three", Method: "POST"},
	)

	obs := &recordingObserver{}
	d := NewDrainer(store, Options{Observer: obs, Logger: zerolog.Nop()})
	res, err := d.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if res.Attempted != 3 || res.Replayed != 2 || res.Failed != 1 || res.Remaining != 1 {
		t.Fatalf("Result = %+v, want attempted=3 replayed=2 failed=1 remaining=1", res)
	}
	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrReplayStatus) {
		t.Fatalf("Errors = %v, want one ErrReplayStatus", res.Errors)
	}

	queue, _ := store.GetQueuedRequests(context.Background())
	if len(queue) != 1 || queue[0].ID != "2" {
		t.Fatalf("queue after drain = %v, want only request 2", queue)
	}
	if strings.Join(order, ",") != "/one,/two,/three" {
		t.Fatalf("replay order = %v, want queue order", order)
	}
	if strings.Join(obs.replayed, ",") != "1,3" || strings.Join(obs.failed, ",") != "2" || obs.drains != 1 {
		t.Fatalf("observer = replayed %v failed %v drains %d", obs.replayed, obs.failed, obs.drains)
	}
}

func TestDrain_PermanentRejectionIsDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone":
			http.Error(w, "no such wishlist", http.StatusNotFound)
		case "/busy":
			http.Error(w, "slow down", http.StatusTooManyRequests)
		case "/down":
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	enqueueAll(t, store,
		storage.QueuedRequest{ID: "ok", URL: server.URL + "/ok", Method: "POST"},
		storage.QueuedRequest{ID: "gone", URL: server.URL + "/gone", Method: "DELETE"},
		storage.QueuedRequest{ID: "busy", URL: server.URL + "/busy", Method: "POST"},
		storage.QueuedRequest{ID: "down", URL: server.URL + "/down", Method: "POST"},
	)

	obs := &recordingObserver{}
	d := NewDrainer(store, Options{Observer: obs, Logger: zerolog.Nop()})
	res, err := d.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if res.Attempted != 4 || res.Replayed != 1 || res.Rejected != 1 || res.Failed != 2 || res.Remaining != 2 {
		t.Fatalf("Result = %+v, want replayed=1 rejected=1 failed=2 remaining=2", res)
	}

	var rejected, retryable int
	for _, e := range res.Errors {
		switch {
		case errors.Is(e, ErrReplayRejected):
			rejected++
		case errors.Is(e, ErrReplayStatus):
			retryable++
		}
	}
	if rejected != 1 || retryable != 2 {
		t.Fatalf("Errors = %v, want 1 rejected and 2 retryable", res.Errors)
	}

	queue, _ := store.GetQueuedRequests(context.Background())
	var ids []string
	for _, q := range queue {
		ids = append(ids, q.ID)
	}
	if strings.Join(ids, ",") != "busy,down" {
		t.Fatalf("queue after drain = %v, want busy,down", ids)
	}
	if strings.Join(obs.failed, ",") != "gone,busy,down" {
		t.Fatalf("observer failed = %v, want gone,busy,down", obs.failed)
	}
}

func TestRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{
		400: false, 401: false, 404: false, 409: false, 422: false,
		408: true, 425: true, 429: true, 500: true, 502: true, 503: true,
	} {
		if got := retryableStatus(code); got != want {
			t.Fatalf("retryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestDrain_NetworkErrorKeepsEntry(t *testing.T) {
	store := storage.NewMemory()
	enqueueAll(t, store, storage.QueuedRequest{ID: "1", URL: "http://127.0.0.1:1/unreachable", Method: "GET"})

	d := NewDrainer(store, Options{Logger: zerolog.Nop()})
	res, err := d.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if res.Failed != 1 || res.Remaining != 1 {
		t.Fatalf("Result = %+v, want one failure left queued", res)
	}
	queue, _ := store.GetQueuedRequests(context.Background())
	if len(queue) != 1 {
		t.Fatalf("queue = %d entries, want 1", len(queue))
	}
}

func TestDrain_ReplaysMethodHeadersAndBody(t *testing.T) {
	type seen struct {
		method, trace, contentType, body string
	}
	got := make(chan seen, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- seen{r.Method, r.Header.Get("X-Trace"), r.Header.Get("Content-Type"), string(b)}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	enqueueAll(t, store,
		storage.QueuedRequest{ID: "1", URL: server.URL, Method: "put", Headers: map[string]string{"X-Trace": "abc"}, Body: json.RawMessage(`{"qty":2}`)},
		storage.QueuedRequest{ID: "2", URL: server.URL, Method: "DELETE"},
	)

	d := NewDrainer(store, Options{Logger: zerolog.Nop()})
	if _, err := d.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	first := <-got
	if first.method != "PUT" || first.trace != "abc" || first.contentType != "application/json" || first.body != `{"qty":2}` {
		t.Fatalf("first replay = %+v, want PUT with trace header and json body", first)
	}
	second := <-got
	if second.method != "DELETE" || second.body != "" || second.contentType != "" {
		t.Fatalf("second replay = %+v, want bodyless DELETE", second)
	}
}

func TestDrain_OverlappingCallsShareOnePass(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	enqueueAll(t, store, storage.QueuedRequest{ID: "1", URL: server.URL, Method: "POST"})
	d := NewDrainer(store, Options{Logger: zerolog.Nop()})

	const callers = 4
	results := make(chan Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := d.Drain(context.Background())
			if err != nil {
				t.Errorf("Drain: %v", err)
			}
			results <- res
		}()
	}

	deadline := time.After(2 * time.Second)
	for hits.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("replay never reached server")
		case <-time.After(5 * time.Millisecond):
		}
	}
	// Give the remaining callers time to join the in-flight pass.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	if n := hits.Load(); n != 1 {
		t.Fatalf("server hits = %d, want 1", n)
	}
	for res := range results {
		if res.Replayed != 1 {
			t.Fatalf("Result = %+v, want shared replayed=1", res)
		}
	}
}

func TestDrain_EmptyQueue(t *testing.T) {
	obs := &recordingObserver{}
	d := NewDrainer(storage.NewMemory(), Options{Observer: obs, Logger: zerolog.Nop()})
	res, err := d.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if res.Attempted != 0 || res.Remaining != 0 {
		t.Fatalf("Result = %+v, want empty", res)
	}
	if obs.drains != 1 {
		t.Fatalf("Drained calls = %d, want 1", obs.drains)
	}
}

func TestDrain_CancelledContextLeavesQueue(t *testing.T) {
	store := storage.NewMemory()
	enqueueAll(t, store,
		storage.QueuedRequest{ID: "1", URL: "http://example.invalid/a", Method: "POST"},
		storage.QueuedRequest{ID: "2", URL: "http://example.invalid/b", Method: "POST"},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDrainer(store, Options{Logger: zerolog.Nop()})
	res, err := d.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if res.Attempted != 0 || res.Remaining != 2 {
		t.Fatalf("Result = %+v, want nothing attempted and 2 remaining", res)
	}
}

type failingStore struct {
	storage.Store
}

func (failingStore) GetQueuedRequests(context.Context) ([]storage.QueuedRequest, error) {
	return nil, errors.New("disk gone")
}

func TestDrain_QueueReadErrorIsReturned(t *testing.T) {
	d := NewDrainer(failingStore{storage.NewMemory()}, Options{Logger: zerolog.Nop()})
	if _, err := d.Drain(context.Background()); err == nil || !strings.Contains(err.Error(), "read offline queue") {
		t.Fatalf("Drain error = %v, want read offline queue error", err)
	}
}

func TestDrain_RateLimitPacesReplays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	enqueueAll(t, store,
		storage.QueuedRequest{ID: "1", URL: server.URL, Method: "POST"},
		storage.QueuedRequest{ID: "2", URL: server.URL, Method: "POST"},
		storage.QueuedRequest{ID: "3", URL: server.URL, Method: "POST"},
	)

	d := NewDrainer(store, Options{ReplaysPerSecond: 20, Logger: zerolog.Nop()})
	start := time.Now()
	res, err := d.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if res.Replayed != 3 {
		t.Fatalf("Replayed = %d, want 3", res.Replayed)
	}
	// Burst of one at 20/s: the second and third replays wait ~50ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("elapsed = %v, want pacing of at least ~100ms", elapsed)
	}
}
