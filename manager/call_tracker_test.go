package manager

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sangneko/Chat-AI/metrics"
)

func TestCallTrackerCounts(t *testing.T) {
	ct := NewCallTracker(time.Second)
	defer ct.Shutdown()

	okBefore := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("tracker-test", "ok"))
	errBefore := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("tracker-test", "error"))

	done1 := ct.Begin("tracker-test")
	done2 := ct.Begin("tracker-test")

	if got := ct.Snapshot("tracker-test").InFlight; got != 2 {
		t.Errorf("in flight: got %d, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.UpstreamInFlight.WithLabelValues("tracker-test")); got != 2 {
		t.Errorf("in flight gauge: got %f, want 2", got)
	}

	done1(nil)
	done2(errors.New("upstream failed"))
	done2(errors.New("called twice"))

	s := ct.Snapshot("tracker-test")
	if s.InFlight != 0 || s.Succeeded != 1 || s.Failed != 1 {
		t.Errorf("snapshot: got %+v", s)
	}
	if got := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("tracker-test", "ok")); got != okBefore+1 {
		t.Errorf("ok counter: got %f, want %f", got, okBefore+1)
	}
	if got := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("tracker-test", "error")); got != errBefore+1 {
		t.Errorf("error counter: got %f, want %f", got, errBefore+1)
	}
	if got := testutil.ToFloat64(metrics.UpstreamInFlight.WithLabelValues("tracker-test")); got != 0 {
		t.Errorf("in flight gauge: got %f, want 0", got)
	}
}

func TestCallTrackerConcurrent(t *testing.T) {
	ct := NewCallTracker(10 * time.Millisecond)
	defer ct.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done := ct.Begin("tracker-concurrent")
			done(nil)
		}()
	}
	wg.Wait()

	s := ct.Snapshot("tracker-concurrent")
	if s.Succeeded != 50 || s.InFlight != 0 {
		t.Errorf("snapshot: got %+v", s)
	}
}

func TestCallTrackerNilIsNoop(t *testing.T) {
	var ct *CallTracker
	done := ct.Begin("nil")
	done(nil)
	ct.Shutdown()
}

func TestCallTrackerShutdownTwice(t *testing.T) {
	ct := NewCallTracker(time.Second)
	ct.Shutdown()
	ct.Shutdown()
}
