package offline

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Schedule triggers periodic drains on a cron spec (standard five-field syntax or
// descriptors such as "@every 5m"). Scheduled passes coalesce with reconnect-triggered
// ones through the Drainer's single-flight guard.
type Schedule struct {
	cron *cron.Cron
}

// StartSchedule begins running d.Drain on spec until Stop is called or ctx ends.
// An empty spec returns a nil Schedule, which is safe to Stop.
func StartSchedule(ctx context.Context, spec string, d *Drainer, log zerolog.Logger) (*Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := d.Drain(ctx); err != nil {
			log.Warn().Err(err).Msg("scheduled sync failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse sync schedule %q: %w", spec, err)
	}
	c.Start()

	s := &Schedule{cron: c}
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return s, nil
}

// Stop halts the schedule and waits for a running drain to return.
func (s *Schedule) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
