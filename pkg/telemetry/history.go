package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const historyLogPrefix = "telemetry:history"

// historyLimit bounds the in-memory execution log. Oldest entries are evicted
// first once the limit is reached.
const historyLimit = 1000

// Entry is one dispatched request, kept for diagnostics.
type Entry struct {
	Timestamp     time.Time      `json:"timestamp"`
	AgentType     string         `json:"agent_type"`
	Request       string         `json:"request"`
	Confidence    float64        `json:"confidence"`
	Success       bool           `json:"success"`
	ExecutionTime float64        `json:"execution_time"`
	Context       map[string]any `json:"context,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Archiver persists history entries beyond the in-memory window. Archival is
// best effort; failures are logged and never surface to the dispatch path.
type Archiver interface {
	ArchiveEntry(ctx context.Context, e Entry) error
}

// History is a bounded FIFO log of dispatch outcomes. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	entries  []Entry
	start    int
	count    int
	archiver Archiver
}

// NewHistory creates an empty History. archiver may be nil.
func NewHistory(archiver Archiver) *History {
	return &History{
		entries:  make([]Entry, historyLimit),
		archiver: archiver,
	}
}

// Append records one entry, evicting the oldest when full, and forwards it to
// the archiver when one is configured.
func (h *History) Append(ctx context.Context, e Entry) {
	h.mu.Lock()
	if h.count < historyLimit {
		h.entries[(h.start+h.count)%historyLimit] = e
		h.count++
	} else {
		h.entries[h.start] = e
		h.start = (h.start + 1) % historyLimit
	}
	h.mu.Unlock()

	if h.archiver != nil {
		if err := h.archiver.ArchiveEntry(ctx, e); err != nil {
			slog.Warn(fmt.Sprintf("%s - archive failed: %v", historyLogPrefix, err))
		}
	}
}

// Recent returns up to n entries, oldest first. n <= 0 returns everything.
func (h *History) Recent(n int) []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || n > h.count {
		n = h.count
	}
	out := make([]Entry, 0, n)
	for i := h.count - n; i < h.count; i++ {
		out = append(out, h.entries[(h.start+i)%historyLimit])
	}
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
