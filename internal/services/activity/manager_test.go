package activity

import (
	"context"
	"testing"
	"time"

	"github.com/ayase/tomodachi/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestManager(t *testing.T) (*Manager, *mockRelationshipRepository) {
	t.Helper()
	agg, relRepo, _, _, _ := newTestAggregator()
	return NewManager(context.Background(), agg, newMockWatermarkService(), time.Hour, nil), relRepo
}

func TestManager_SessionIsPerUser(t *testing.T) {
	m, _ := newTestManager(t)
	defer m.Shutdown()

	alice := m.Session("alice")
	if again := m.Session("alice"); again != alice {
		t.Error("same user must get the same session")
	}
	if bob := m.Session("bob"); bob == alice {
		t.Error("different users must get different sessions")
	}
}

func TestManager_TriggerRefreshes(t *testing.T) {
	m, relRepo := newTestManager(t)
	defer m.Shutdown()

	sess := m.Session("alice")
	waitFor(t, 2*time.Second, func() bool { return !sess.Snapshot().RefreshedAt.IsZero() })

	relRepo.rels = append(relRepo.rels, pendingRequest("r1", "bob", "alice", time.Now()))
	m.Trigger("alice")

	waitFor(t, 2*time.Second, func() bool { return sess.Snapshot().Counts.UnreadRequests == 1 })
}

func TestManager_TriggerUnknownUserIsNoop(t *testing.T) {
	m, _ := newTestManager(t)
	defer m.Shutdown()
	m.Trigger("nobody")
}

func TestManager_RemoveStopsPolling(t *testing.T) {
	m, relRepo := newTestManager(t)
	defer m.Shutdown()

	sess := m.Session("alice")
	waitFor(t, 2*time.Second, func() bool { return !sess.Snapshot().RefreshedAt.IsZero() })

	m.Remove("alice")

	relRepo.rels = append(relRepo.rels, pendingRequest("r1", "bob", "alice", time.Now()))
	m.Trigger("alice")
	time.Sleep(50 * time.Millisecond)

	if sess.Snapshot().Counts.UnreadRequests != 0 {
		t.Error("removed session refreshed")
	}
	if again := m.Session("alice"); again == sess {
		t.Error("user must get a fresh session after removal")
	}
}

func TestManager_RemoveUnknownUserIsNoop(t *testing.T) {
	m, _ := newTestManager(t)
	defer m.Shutdown()
	m.Remove("nobody")
}

func TestManager_EvictsIdleSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	exporter := metrics.NewPrometheusExporter(reg)
	agg, _, _, _, _ := newTestAggregator()
	m := NewManager(context.Background(), agg, newMockWatermarkService(), 5*time.Millisecond, exporter)
	defer m.Shutdown()

	sess := m.Session("alice")
	waitFor(t, 2*time.Second, func() bool { return !sess.Snapshot().RefreshedAt.IsZero() })

	// No further reads: once the session idles past the TTL the reaper
	// evicts it and stops its poller
	waitFor(t, 5*time.Second, func() bool {
		m.mu.Lock()
		_, ok := m.entries["alice"]
		m.mu.Unlock()
		return !ok
	})

	// Let any in-flight cycle drain, then verify polling has stopped
	time.Sleep(50 * time.Millisecond)
	before := counterValue(t, reg, "tomodachi_poll_cycles_total")
	time.Sleep(100 * time.Millisecond)
	if after := counterValue(t, reg, "tomodachi_poll_cycles_total"); after != before {
		t.Errorf("cycles kept running after eviction: %v then %v", before, after)
	}

	if again := m.Session("alice"); again == sess {
		t.Error("user must get a fresh session after eviction")
	}
}

func TestManager_ShutdownStopsPolling(t *testing.T) {
	m, relRepo := newTestManager(t)
	sess := m.Session("alice")
	waitFor(t, 2*time.Second, func() bool { return !sess.Snapshot().RefreshedAt.IsZero() })

	m.Shutdown()

	relRepo.rels = append(relRepo.rels, pendingRequest("r1", "bob", "alice", time.Now()))
	m.Trigger("alice")
	time.Sleep(50 * time.Millisecond)

	if sess.Snapshot().Counts.UnreadRequests != 0 {
		t.Error("session refreshed after shutdown")
	}
}
