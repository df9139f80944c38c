// Package observability collects in-process counters for the tool
// endpoints.
package observability

import (
	"sync"
	"sync/atomic"
)

// Metrics aggregates per-tool call counters.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	toolMetrics map[string]*ToolMetrics
}

// ToolMetrics holds the counters of one tool.
type ToolMetrics struct {
	calls    atomic.Int64
	failures atomic.Int64
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		toolMetrics: make(map[string]*ToolMetrics),
	}
}

func (m *Metrics) getToolMetrics(tool string) *ToolMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	tm, ok := m.toolMetrics[tool]
	if !ok {
		tm = &ToolMetrics{}
		m.toolMetrics[tool] = tm
	}
	return tm
}

// RecordCall records one tool invocation.
func (m *Metrics) RecordCall(tool string) {
	m.requestTotal.Add(1)
	m.getToolMetrics(tool).calls.Add(1)
}

// RecordFailure records one failed tool invocation.
func (m *Metrics) RecordFailure(tool string) {
	m.requestFailed.Add(1)
	m.getToolMetrics(tool).failures.Add(1)
}

// ToolSnapshot is the exported view of one tool's counters.
type ToolSnapshot struct {
	Calls    int64 `json:"calls"`
	Failures int64 `json:"failures"`
}

// Snapshot is the exported view of all counters.
type Snapshot struct {
	RequestTotal  int64                   `json:"requestTotal"`
	RequestFailed int64                   `json:"requestFailed"`
	Tools         map[string]ToolSnapshot `json:"tools"`
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := Snapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Tools:         make(map[string]ToolSnapshot, len(m.toolMetrics)),
	}
	for tool, tm := range m.toolMetrics {
		snapshot.Tools[tool] = ToolSnapshot{
			Calls:    tm.calls.Load(),
			Failures: tm.failures.Load(),
		}
	}
	return snapshot
}
