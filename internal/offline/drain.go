package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/luxury-retail/productlist/internal/storage"
)

var (
	// ErrReplayStatus marks a replay the server answered with a retryable status
	// (5xx, 408, 425 or 429). The entry stays queued.
	ErrReplayStatus = errors.New("replay failed")
	// ErrReplayRejected marks a replay the server refused with any other 4xx. Retrying
	// cannot succeed, so the entry is dropped.
	ErrReplayRejected = errors.New("replay rejected")
)

const (
	defaultReplayTimeout = 15 * time.Second
	drainKey             = "drain"
)

// Result summarizes one drain pass.
type Result struct {
	Attempted int
	Replayed  int
	Failed    int
	// Rejected counts entries dropped after a permanent client error.
	Rejected  int
	Remaining int
	Errors    []error
	// Shared is true when this caller joined a pass another caller started.
	Shared bool
}

// Observer receives per-request outcomes. Metrics and tests hook in here.
type Observer interface {
	Replayed(req storage.QueuedRequest)
	ReplayFailed(req storage.QueuedRequest, err error)
	Drained(res Result)
}

// Options configure a Drainer.
type Options struct {
	HTTPClient *http.Client
	// ReplaysPerSecond paces replays; zero or negative disables pacing.
	ReplaysPerSecond float64
	Observer         Observer
	Logger           zerolog.Logger
}

// Drainer replays queued requests against their original endpoints.
type Drainer struct {
	store    storage.Store
	http     *http.Client
	limiter  *rate.Limiter
	observer Observer
	log      zerolog.Logger

	flight singleflight.Group
}

// NewDrainer builds a Drainer over store.
func NewDrainer(store storage.Store, opts Options) *Drainer {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultReplayTimeout}
	}
	var limiter *rate.Limiter
	if opts.ReplaysPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ReplaysPerSecond), 1)
	}
	return &Drainer{
		store:    store,
		http:     client,
		limiter:  limiter,
		observer: opts.Observer,
		log:      opts.Logger,
	}
}

// Drain replays every queued request in queue order. Successful replays and requests
// the server permanently rejects are removed from the queue; transport errors and
// retryable statuses stay queued for the next pass. Calls that overlap a pass
// already in flight wait for it and share its result instead of starting another.
// The returned error is non-nil only when the queue itself could not be read.
func (d *Drainer) Drain(ctx context.Context) (Result, error) {
	v, err, shared := d.flight.Do(drainKey, func() (any, error) {
		return d.drain(ctx)
	})
	res, _ := v.(Result)
	res.Shared = shared
	return res, err
}

func (d *Drainer) drain(ctx context.Context) (Result, error) {
	queued, err := d.store.GetQueuedRequests(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read offline queue: %w", err)
	}

	var res Result
	for _, req := range queued {
		if err := ctx.Err(); err != nil {
			res.Remaining += len(queued) - res.Attempted
			break
		}
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				res.Remaining += len(queued) - res.Attempted
				break
			}
		}
		res.Attempted++

		err := d.replay(ctx, req)
		if errors.Is(err, ErrReplayRejected) {
			if rmErr := d.store.RemoveFromQueue(ctx, req.ID); rmErr != nil {
				err = fmt.Errorf("remove rejected request: %w", rmErr)
			} else {
				res.Rejected++
				res.Errors = append(res.Errors, fmt.Errorf("request %s: %w", req.ID, err))
				d.log.Warn().Err(err).Str("id", req.ID).Str("method", req.Method).Str("url", req.URL).Msg("dropped rejected request")
				if d.observer != nil {
					d.observer.ReplayFailed(req, err)
				}
				continue
			}
		}
		if err == nil {
			err = d.store.RemoveFromQueue(ctx, req.ID)
			if err != nil {
				err = fmt.Errorf("remove replayed request: %w", err)
			}
		}
		if err != nil {
			res.Failed++
			res.Remaining++
			res.Errors = append(res.Errors, fmt.Errorf("request %s: %w", req.ID, err))
			d.log.Warn().Err(err).Str("id", req.ID).Str("method", req.Method).Str("url", req.URL).Msg("failed to sync request")
			if d.observer != nil {
				d.observer.ReplayFailed(req, err)
			}
			continue
		}
		res.Replayed++
		d.log.Debug().Str("id", req.ID).Str("method", req.Method).Str("url", req.URL).Msg("synced queued request")
		if d.observer != nil {
			d.observer.Replayed(req)
		}
	}

	if res.Attempted > 0 {
		d.log.Info().Int("replayed", res.Replayed).Int("failed", res.Failed).Int("rejected", res.Rejected).Int("remaining", res.Remaining).Msg("offline queue drained")
	}
	if d.observer != nil {
		d.observer.Drained(res)
	}
	return res, nil
}

func (d *Drainer) replay(ctx context.Context, req storage.QueuedRequest) error {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.HasBody() {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.HasBody() && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		sentinel := ErrReplayStatus
		if !retryableStatus(resp.StatusCode) {
			sentinel = ErrReplayRejected
		}
		return fmt.Errorf("%w: %s %s returned status %d", sentinel, method, req.URL, resp.StatusCode)
	}
	return nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}
