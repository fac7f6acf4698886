package activity

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayase/tomodachi/internal/infrastructure/metrics"
)

// Poller drives periodic refreshes of a session's projection. Cycles run on
// a fixed interval or on demand via Trigger; a tick arriving while a cycle is
// still in flight is skipped, not queued, so a slow store never builds a
// backlog of identical work.
type Poller struct {
	refresh  func(context.Context) error
	interval time.Duration
	exporter *metrics.PrometheusExporter

	trigger  chan struct{}
	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoller creates a poller that calls refresh every interval.
// exporter may be nil.
func NewPoller(refresh func(context.Context) error, interval time.Duration, exporter *metrics.PrometheusExporter) *Poller {
	return &Poller{
		refresh:  refresh,
		interval: interval,
		exporter: exporter,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop. The loop runs until ctx is cancelled or Stop
// is called, whichever comes first.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		// Prime the projection once so the first read does not wait a
		// full interval.
		p.runCycle(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.runCycle(ctx)
			case <-p.trigger:
				p.runCycle(ctx)
			}
		}
	}()
}

// Trigger requests an immediate cycle. Non-blocking: if a trigger is already
// queued or a cycle is in flight the request folds into it.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for any in-flight cycle to finish.
// After Stop returns no further refreshes run.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
			<-p.done
		}
		p.wg.Wait()
	})
}

func (p *Poller) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		if p.exporter != nil {
			p.exporter.RecordPollCoalesced()
		}
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		err := p.refresh(ctx)
		if p.exporter != nil {
			p.exporter.RecordPollCycle(time.Since(start).Seconds())
		}
		if err != nil {
			if p.exporter != nil {
				p.exporter.RecordPollFailure()
			}
			log.Printf("activity poll failed: %v", err)
		}
	}()
}
