package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/luxury-retail/productlist/internal/catalog"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	products, err := s.GetAllProducts(ctx)
	if err != nil {
		t.Fatalf("GetAllProducts on empty store: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("GetAllProducts = %d products, want 0", len(products))
	}

	mock := catalog.MockProducts()
	for _, p := range mock[:3] {
		if err := s.SaveProduct(ctx, p); err != nil {
			t.Fatalf("SaveProduct(%s): %v", p.ID, err)
		}
	}
	updated := mock[0]
	updated.Name = "Royal Oak Offshore"
	if err := s.SaveProduct(ctx, updated); err != nil {
		t.Fatalf("SaveProduct(update): %v", err)
	}

	products, err = s.GetAllProducts(ctx)
	if err != nil {
		t.Fatalf("GetAllProducts: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("GetAllProducts = %d products, want 3", len(products))
	}
	if products[0].ID != mock[0].ID || products[0].Name != "Royal Oak Offshore" {
		t.Fatalf("products[0] = %s %q, want updated %s in first position", products[0].ID, products[0].Name, mock[0].ID)
	}
	if !products[1].Price.Equal(mock[1].Price) {
		t.Fatalf("products[1].Price = %s, want %s", products[1].Price, mock[1].Price)
	}

	if err := s.SaveProduct(ctx, catalog.Product{}); err == nil {
		t.Fatalf("SaveProduct without id returned nil error")
	}

	last, err := s.LastSyncTime(ctx)
	if err != nil {
		t.Fatalf("LastSyncTime: %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("LastSyncTime = %v, want zero before first sync", last)
	}
	stamp := time.UnixMilli(1_760_000_000_000)
	if err := s.SetLastSyncTime(ctx, stamp); err != nil {
		t.Fatalf("SetLastSyncTime: %v", err)
	}
	last, err = s.LastSyncTime(ctx)
	if err != nil {
		t.Fatalf("LastSyncTime: %v", err)
	}
	if !last.Equal(stamp) {
		t.Fatalf("LastSyncTime = %v, want %v", last, stamp)
	}

	reqs := []QueuedRequest{
		{ID: "r1", URL: "https://api.example.com/a", Method: "POST", Headers: map[string]string{"X-Trace": "1"}, Body: json.RawMessage(`{"a":1}`), CreatedAt: stamp},
		{ID: "r2", URL: "https://api.example.com/b", Method: "DELETE", CreatedAt: stamp},
		{ID: "r3", URL: "https://api.example.com/c", Method: "PUT", Body: json.RawMessage(`[1,2]`), CreatedAt: stamp},
	}
	for _, r := range reqs {
		if err := s.Enqueue(ctx, r); err != nil {
			t.Fatalf("Enqueue(%s): %v", r.ID, err)
		}
	}
	if err := s.Enqueue(ctx, QueuedRequest{ID: "bad"}); err == nil {
		t.Fatalf("Enqueue without url returned nil error")
	}

	queue, err := s.GetQueuedRequests(ctx)
	if err != nil {
		t.Fatalf("GetQueuedRequests: %v", err)
	}
	if got := requestIDs(queue); !equalStrings(got, []string{"r1", "r2", "r3"}) {
		t.Fatalf("queue = %v, want [r1 r2 r3]", got)
	}
	if queue[0].Headers["X-Trace"] != "1" {
		t.Fatalf("queue[0].Headers = %v, want X-Trace=1", queue[0].Headers)
	}
	if !queue[0].HasBody() || queue[1].HasBody() {
		t.Fatalf("HasBody = %v/%v, want true/false", queue[0].HasBody(), queue[1].HasBody())
	}

	if err := s.RemoveFromQueue(ctx, "r2"); err != nil {
		t.Fatalf("RemoveFromQueue(r2): %v", err)
	}
	if err := s.RemoveFromQueue(ctx, "r2"); err != nil {
		t.Fatalf("RemoveFromQueue(r2) twice: %v, want nil", err)
	}
	if err := s.RemoveFromQueue(ctx, "missing"); err != nil {
		t.Fatalf("RemoveFromQueue(missing): %v, want nil", err)
	}
	queue, err = s.GetQueuedRequests(ctx)
	if err != nil {
		t.Fatalf("GetQueuedRequests: %v", err)
	}
	if got := requestIDs(queue); !equalStrings(got, []string{"r1", "r3"}) {
		t.Fatalf("queue after removal = %v, want [r1 r3]", got)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStore_QueueIsCopiedOnRead(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	if err := s.Enqueue(ctx, QueuedRequest{ID: "r1", URL: "http://x", Headers: map[string]string{"A": "1"}}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	queue, _ := s.GetQueuedRequests(ctx)
	queue[0].Headers["A"] = "changed"

	again, _ := s.GetQueuedRequests(ctx)
	if again[0].Headers["A"] != "1" {
		t.Fatalf("GetQueuedRequests should clone headers; got %q", again[0].Headers["A"])
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	p := catalog.MockProducts()[0]
	if err := s.SaveProduct(ctx, p); err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}
	if err := s.Enqueue(ctx, QueuedRequest{ID: "r1", URL: "http://x", Method: "POST", Body: json.RawMessage(`{"k":"v"}`)}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(reopen): %v", err)
	}
	products, _ := reopened.GetAllProducts(ctx)
	if len(products) != 1 || products[0].ID != p.ID || !products[0].Price.Equal(p.Price) {
		t.Fatalf("reopened products = %#v, want %s", products, p.ID)
	}
	queue, _ := reopened.GetQueuedRequests(ctx)
	if len(queue) != 1 || string(queue[0].Body) != `{"k":"v"}` {
		t.Fatalf("reopened queue = %#v, want r1 with body", queue)
	}
}

func TestFileStore_PreservesBodyBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	body := json.RawMessage(`{"items":[{"id":"1","qty":2}],"note":"gift"}`)
	if err := s.Enqueue(ctx, QueuedRequest{ID: "r1", URL: "http://x", Method: "POST", Body: body}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	// A later unrelated write rewrites the whole document.
	if err := s.SetLastSyncTime(ctx, time.Now()); err != nil {
		t.Fatalf("SetLastSyncTime: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(reopen): %v", err)
	}
	queue, _ := reopened.GetQueuedRequests(ctx)
	if len(queue) != 1 {
		t.Fatalf("reopened queue has %d entries, want 1", len(queue))
	}
	if string(queue[0].Body) != string(body) {
		t.Fatalf("reopened body = %q, want %q", queue[0].Body, body)
	}
}

func TestFileStore_SharedBetweenHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	tui, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(tui): %v", err)
	}
	defer tui.Close()
	cli, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(cli): %v", err)
	}
	defer cli.Close()

	if err := cli.Enqueue(ctx, QueuedRequest{ID: "cli-1", URL: "http://x/wishlist", Method: "POST"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	queue, err := tui.GetQueuedRequests(ctx)
	if err != nil {
		t.Fatalf("GetQueuedRequests: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != "cli-1" {
		t.Fatalf("queue seen by other handle = %#v, want cli-1", queue)
	}

	if err := tui.SaveProduct(ctx, catalog.MockProducts()[0]); err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}
	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(reopen): %v", err)
	}
	defer reopened.Close()
	queue, _ = reopened.GetQueuedRequests(ctx)
	if len(queue) != 1 || queue[0].ID != "cli-1" {
		t.Fatalf("queue on disk = %#v, want cli-1 kept", queue)
	}
	products, _ := reopened.GetAllProducts(ctx)
	if len(products) != 1 {
		t.Fatalf("products on disk = %d, want 1", len(products))
	}
}

func TestFileStore_FailedWriteLeavesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer s.Close()
	if err := s.Enqueue(ctx, QueuedRequest{ID: "r1", URL: "http://x", Method: "POST"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := s.Enqueue(ctx, QueuedRequest{ID: "", URL: "http://x"}); err == nil {
		t.Fatalf("Enqueue without id succeeded, want error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.RemoveFromQueue(cancelled, "r1"); err == nil {
		t.Fatalf("RemoveFromQueue with cancelled context succeeded, want error")
	}

	queue, _ := s.GetQueuedRequests(ctx)
	if len(queue) != 1 || queue[0].ID != "r1" {
		t.Fatalf("queue = %#v, want only r1", queue)
	}
}

func TestFileStore_UnwritableDirKeepsLastGoodState(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	ctx := context.Background()

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer s.Close()
	if err := s.Enqueue(ctx, QueuedRequest{ID: "r1", URL: "http://x", Method: "POST"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if err := s.Enqueue(ctx, QueuedRequest{ID: "r2", URL: "http://x", Method: "POST"}); err == nil {
		t.Fatalf("Enqueue into read-only dir succeeded, want error")
	}
	queue, err := s.GetQueuedRequests(ctx)
	if err != nil {
		t.Fatalf("GetQueuedRequests: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != "r1" {
		t.Fatalf("queue after failed write = %#v, want only r1", queue)
	}
}

func TestFileStore_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not-json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Fatalf("OpenFile returned nil error for corrupt file")
	}
}

func openTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis integration test")
	}
	ctx := context.Background()
	prefix := "productlist-test-" + strings.ReplaceAll(t.Name(), "/", "-") + "-" + time.Now().Format("150405.000000")
	s, err := OpenRedis(ctx, addr, 0, prefix)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() {
		keys, _ := s.client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			s.client.Del(ctx, keys...)
		}
		_ = s.Close()
	})
	return s
}

func TestRedisStore(t *testing.T) {
	exerciseStore(t, openTestRedis(t))
}

// failingPipelines rejects MULTI/EXEC pipelines while fail is set.
type failingPipelines struct {
	fail atomic.Bool
}

func (h *failingPipelines) BeforeProcess(ctx context.Context, _ redis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (h *failingPipelines) AfterProcess(context.Context, redis.Cmder) error { return nil }

func (h *failingPipelines) BeforeProcessPipeline(ctx context.Context, _ []redis.Cmder) (context.Context, error) {
	if h.fail.Load() {
		return ctx, errors.New("connection reset")
	}
	return ctx, nil
}

func (h *failingPipelines) AfterProcessPipeline(context.Context, []redis.Cmder) error { return nil }

func TestRedisStore_SaveProductIsAtomic(t *testing.T) {
	s := openTestRedis(t)
	ctx := context.Background()
	hook := &failingPipelines{}
	s.client.AddHook(hook)

	p := catalog.MockProducts()[0]
	hook.fail.Store(true)
	if err := s.SaveProduct(ctx, p); err == nil {
		t.Fatalf("SaveProduct succeeded with failing pipeline, want error")
	}
	if exists, _ := s.client.HExists(ctx, s.key("products"), p.ID).Result(); exists {
		t.Fatalf("product hashed after failed save")
	}

	hook.fail.Store(false)
	if err := s.SaveProduct(ctx, p); err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}
	if err := s.SaveProduct(ctx, p); err != nil {
		t.Fatalf("SaveProduct(again): %v", err)
	}
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		t.Fatalf("GetAllProducts: %v", err)
	}
	if len(products) != 1 || products[0].ID != p.ID {
		t.Fatalf("products = %#v, want exactly %s", products, p.ID)
	}
}

func TestNewRedis_DefaultPrefix(t *testing.T) {
	s := NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), " ")
	t.Cleanup(func() { _ = s.Close() })
	if got := s.key("queue"); got != "productlist:queue" {
		t.Fatalf("key = %q, want productlist:queue", got)
	}
}

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("Open(memory) = %T, want *Memory", s)
	}

	s, err = Open(ctx, Config{Path: filepath.Join(t.TempDir(), "c.json")})
	if err != nil {
		t.Fatalf("Open(default): %v", err)
	}
	if _, ok := s.(*File); !ok {
		t.Fatalf("Open(default) = %T, want *File", s)
	}

	_, err = Open(ctx, Config{Driver: "sqlite"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("Open(sqlite) error = %v, want ErrUnknownDriver", err)
	}
}

func requestIDs(reqs []QueuedRequest) []string {
	var out []string
	for _, r := range reqs {
		out = append(out, r.ID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
