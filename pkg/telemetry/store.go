// Package telemetry tracks dispatch outcomes: per-agent counters with an
// exact running mean of execution time, and a bounded execution history.
package telemetry

import (
	"sync"
	"time"
)

// AgentStats is the accumulated outcome record of one agent type.
type AgentStats struct {
	TotalRequests        int       `json:"total_requests"`
	SuccessfulRequests   int       `json:"successful_requests"`
	FailedRequests       int       `json:"failed_requests"`
	AverageExecutionTime float64   `json:"average_execution_time"`
	LastUsed             time.Time `json:"last_used"`
}

// Snapshot is a read-only copy of the store.
type Snapshot struct {
	TotalRequests  int                   `json:"total_requests"`
	AgentUsage     map[string]AgentStats `json:"agent_usage"`
	HistoryEntries int                   `json:"history_entries"`
}

// Store accumulates dispatch counters per agent type. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	usage map[string]*AgentStats
	total int
	now   func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{usage: make(map[string]*AgentStats), now: time.Now}
}

// Record adds one dispatch outcome. The average execution time is maintained
// incrementally so it is always the exact mean over all recorded calls, not a
// decayed approximation.
func (s *Store) Record(agentType string, success bool, seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.usage[agentType]
	if !ok {
		stats = &AgentStats{}
		s.usage[agentType] = stats
	}

	stats.TotalRequests++
	if success {
		stats.SuccessfulRequests++
	} else {
		stats.FailedRequests++
	}
	n := float64(stats.TotalRequests)
	stats.AverageExecutionTime = (stats.AverageExecutionTime*(n-1) + seconds) / n
	stats.LastUsed = s.now()

	s.total++
}

// Snapshot returns a copy of the current totals. historyEntries is supplied by
// the caller so the stats surface can report history depth alongside usage.
func (s *Store) Snapshot(historyEntries int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage := make(map[string]AgentStats, len(s.usage))
	for t, stats := range s.usage {
		usage[t] = *stats
	}
	return Snapshot{
		TotalRequests:  s.total,
		AgentUsage:     usage,
		HistoryEntries: historyEntries,
	}
}
