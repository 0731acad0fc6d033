package netstatus

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultProbeInterval = 5 * time.Second
	probeTimeout         = 3 * time.Second
	offlineAfterFailures = 2
)

// Prober derives connectivity from periodic HTTP probes. A single successful probe marks
// the network connected; consecutive failures reaching the threshold mark it offline.
type Prober struct {
	url      string
	interval time.Duration
	http     *http.Client
	log      zerolog.Logger

	mu        sync.Mutex
	probed    bool
	connected bool
	failures  int
	subs      listeners
}

var _ Source = (*Prober)(nil)

// NewProber builds a Prober for probeURL. The first probe decides the initial state.
func NewProber(probeURL string, interval time.Duration, log zerolog.Logger) (*Prober, error) {
	trimmed := strings.TrimSpace(probeURL)
	if trimmed == "" {
		return nil, fmt.Errorf("probe url is empty")
	}
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Prober{
		url:       trimmed,
		interval:  interval,
		http:      &http.Client{Timeout: probeTimeout},
		log:       log,
		connected: true,
	}, nil
}

// Status performs one probe and returns the resulting state.
func (p *Prober) Status(ctx context.Context) (Status, error) {
	p.Check(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{Connected: p.connected}, nil
}

func (p *Prober) Subscribe(fn Listener) *Subscription {
	return p.subs.add(fn)
}

// Start launches the probe loop. It returns immediately; the loop stops with ctx.
func (p *Prober) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Check(ctx)
			}
		}
	}()
}

// Check runs a single probe and notifies listeners on a transition.
func (p *Prober) Check(ctx context.Context) {
	err := p.probe(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	prev := p.connected
	if err != nil {
		p.failures++
		// The first reading is trusted as-is; afterwards require repeated failures.
		if !p.probed || p.failures >= offlineAfterFailures {
			p.connected = false
		}
	} else {
		p.failures = 0
		p.connected = true
	}
	p.probed = true
	now := p.connected
	failures := p.failures
	p.mu.Unlock()

	if err != nil {
		p.log.Debug().Err(err).Int("failures", failures).Msg("network probe failed")
	}
	if prev != now {
		p.log.Info().Bool("connected", now).Msg("network status changed")
		p.subs.emit(Status{Connected: now})
	}
}

func (p *Prober) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return fmt.Errorf("create probe: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute probe: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("probe %s returned status %d", p.url, resp.StatusCode)
	}
	return nil
}
