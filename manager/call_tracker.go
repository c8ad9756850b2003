package manager

import (
	"sync"
	"time"

	"github.com/sangneko/Chat-AI/metrics"
)

// ProviderMetrics holds the call counters for one upstream provider.
type ProviderMetrics struct {
	Provider    string
	InFlight    int
	Succeeded   int
	Failed      int
	LastLogTime time.Time
	changed     bool
	mu          sync.Mutex
}

// Snapshot is a point-in-time copy of ProviderMetrics.
type Snapshot struct {
	Provider  string
	InFlight  int
	Succeeded int
	Failed    int
}

// CallTracker accounts for upstream calls. It never blocks or rejects a
// call; it only counts them, exports them to prometheus and logs changes.
type CallTracker struct {
	metricsMap  map[string]*ProviderMetrics
	mu          sync.Mutex
	logInterval time.Duration
	shutdownCh  chan struct{}
	shutdown    sync.Once
}

// NewCallTracker starts a tracker that logs changed counters at most once per logInterval.
func NewCallTracker(logInterval time.Duration) *CallTracker {
	if logInterval <= 0 {
		logInterval = time.Second
	}
	ct := &CallTracker{
		metricsMap:  make(map[string]*ProviderMetrics),
		logInterval: logInterval,
		shutdownCh:  make(chan struct{}),
	}
	go ct.monitorMetrics()
	return ct
}

// Begin records the start of an upstream call and returns the function that
// must be called with the call's outcome. A nil tracker is a no-op.
func (ct *CallTracker) Begin(provider string) func(err error) {
	if ct == nil {
		return func(error) {}
	}
	m := ct.get(provider)
	start := time.Now()

	m.incrementInFlight()
	metrics.UpstreamInFlight.WithLabelValues(provider).Inc()

	var once sync.Once
	return func(err error) {
		once.Do(func() {
			metrics.UpstreamInFlight.WithLabelValues(provider).Dec()
			metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			metrics.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
			m.finish(err == nil)
		})
	}
}

// Snapshot returns the current counters for provider.
func (ct *CallTracker) Snapshot(provider string) Snapshot {
	m := ct.get(provider)
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Provider:  m.Provider,
		InFlight:  m.InFlight,
		Succeeded: m.Succeeded,
		Failed:    m.Failed,
	}
}

// Shutdown stops the logging goroutine.
func (ct *CallTracker) Shutdown() {
	if ct == nil {
		return
	}
	ct.shutdown.Do(func() { close(ct.shutdownCh) })
}

func (ct *CallTracker) get(provider string) *ProviderMetrics {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	m, ok := ct.metricsMap[provider]
	if !ok {
		m = &ProviderMetrics{Provider: provider}
		ct.metricsMap[provider] = m
	}
	return m
}

// monitorMetrics logs providers whose counters changed since the last log line.
func (ct *CallTracker) monitorMetrics() {
	tick := ct.logInterval / 2
	if tick <= 0 {
		tick = ct.logInterval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ct.shutdownCh:
			return
		case now := <-ticker.C:
			ct.mu.Lock()
			all := make([]*ProviderMetrics, 0, len(ct.metricsMap))
			for _, m := range ct.metricsMap {
				all = append(all, m)
			}
			ct.mu.Unlock()

			for _, m := range all {
				m.mu.Lock()
				if m.changed && now.Sub(m.LastLogTime) >= ct.logInterval {
					log.Infof("Provider: %s | In flight: %d | Succeeded: %d | Failed: %d",
						m.Provider, m.InFlight, m.Succeeded, m.Failed)
					m.LastLogTime = now
					m.changed = false
				}
				m.mu.Unlock()
			}
		}
	}
}

func (m *ProviderMetrics) incrementInFlight() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InFlight++
	m.changed = true
}

func (m *ProviderMetrics) finish(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InFlight > 0 {
		m.InFlight--
	}
	if ok {
		m.Succeeded++
	} else {
		m.Failed++
	}
	m.changed = true
}
