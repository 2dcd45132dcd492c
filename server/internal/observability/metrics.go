package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates per-route request counts and latencies.
type Metrics struct {
	mu     sync.Mutex
	routes map[string]*routeMetrics

	requestTotal  atomic.Int64
	requestFailed atomic.Int64
}

type routeMetrics struct {
	count         atomic.Int64
	failed        atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{routes: make(map[string]*routeMetrics)}
}

func (m *Metrics) route(name string) *routeMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.routes[name]
	if !ok {
		rm = &routeMetrics{}
		m.routes[name] = rm
	}
	return rm
}

// Record counts one finished request. Responses with status >= 500 count as failed.
func (m *Metrics) Record(route string, status int, duration time.Duration) {
	rm := m.route(route)
	m.requestTotal.Add(1)
	rm.count.Add(1)
	rm.totalDuration.Add(duration.Milliseconds())
	if status >= 500 {
		m.requestFailed.Add(1)
		rm.failed.Add(1)
	}
}

// RouteSnapshot is the point-in-time view of one route.
type RouteSnapshot struct {
	Route             string `json:"route"`
	Count             int64  `json:"count"`
	Failed            int64  `json:"failed"`
	AverageDurationMs int64  `json:"average_duration_ms"`
}

// MetricsSnapshot is the point-in-time view of all routes.
type MetricsSnapshot struct {
	RequestTotal  int64           `json:"request_total"`
	RequestFailed int64           `json:"request_failed"`
	Routes        []RouteSnapshot `json:"routes"`
}

// Snapshot returns current values with routes sorted by name.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	routes := make([]RouteSnapshot, 0, len(m.routes))
	for name, rm := range m.routes {
		rs := RouteSnapshot{Route: name, Count: rm.count.Load(), Failed: rm.failed.Load()}
		if rs.Count > 0 {
			rs.AverageDurationMs = rm.totalDuration.Load() / rs.Count
		}
		routes = append(routes, rs)
	}
	m.mu.Unlock()

	sort.Slice(routes, func(i, j int) bool { return routes[i].Route < routes[j].Route })
	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Routes:        routes,
	}
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
