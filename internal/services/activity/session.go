package activity

import (
	"context"
	"sync"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/infrastructure/metrics"
	"github.com/ayase/tomodachi/internal/services/watermark"
)

// Snapshot is the projection a session currently shows: badge counts, the
// notification feed, and when it was last recomputed.
type Snapshot struct {
	Counts      Counts
	Feed        []*entities.NotificationEntry
	RefreshedAt time.Time
}

// Session holds one user's activity projection between polls. Reads are
// served from the cached snapshot; point events clear the projection
// optimistically and persist the matching watermark in the same call, rolling
// the projection back if the store cannot be reached.
type Session struct {
	userID     string
	aggregator *Aggregator
	watermarks watermark.ServiceInterface
	exporter   *metrics.PrometheusExporter
	now        func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
	gen      uint64 // bumped by point events; stale refreshes must not commit
}

// NewSession creates a session for the given user. exporter may be nil.
func NewSession(userID string, aggregator *Aggregator, watermarks watermark.ServiceInterface, exporter *metrics.PrometheusExporter) *Session {
	return &Session{
		userID:     userID,
		aggregator: aggregator,
		watermarks: watermarks,
		exporter:   exporter,
		now:        time.Now,
	}
}

// Refresh recomputes the projection from the stores. Called by the poller on
// every cycle and after any relationship or message mutation.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	counts, err := s.aggregator.Counts(ctx, s.userID)
	if err != nil {
		return err
	}
	feed, err := s.aggregator.Feed(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// A point event cleared the projection while these reads were in
		// flight; committing them would resurrect the cleared badge. The
		// next cycle re-reads post-advance state.
		return nil
	}
	s.snapshot = Snapshot{
		Counts:      *counts,
		Feed:        feed,
		RefreshedAt: s.now(),
	}
	return nil
}

// Snapshot returns the current projection
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// OpenMessages marks all messages as read: the unread count is zeroed
// immediately and the messages watermark advanced to now. If the advance
// fails the previous count is restored so the badge does not lie about
// persisted state.
func (s *Session) OpenMessages(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot.Counts.UnreadMessages
	s.snapshot.Counts.UnreadMessages = 0

	if err := s.watermarks.Advance(ctx, s.userID, entities.ChannelMessages, s.now()); err != nil {
		s.snapshot.Counts.UnreadMessages = prev
		if s.exporter != nil {
			s.exporter.RecordWatermarkRollback()
		}
		return err
	}
	s.gen++
	return nil
}

// DismissNotifications clears the notification feed and badge, advancing the
// notifications watermark to now. Covers both closing the bell dropdown and
// an explicit clear-all. Rolls back on a failed advance like OpenMessages.
func (s *Session) DismissNotifications(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevCount := s.snapshot.Counts.UnreadRequests
	prevFeed := s.snapshot.Feed
	s.snapshot.Counts.UnreadRequests = 0
	s.snapshot.Feed = nil

	if err := s.watermarks.Advance(ctx, s.userID, entities.ChannelNotifications, s.now()); err != nil {
		s.snapshot.Counts.UnreadRequests = prevCount
		s.snapshot.Feed = prevFeed
		if s.exporter != nil {
			s.exporter.RecordWatermarkRollback()
		}
		return err
	}
	s.gen++
	return nil
}
