package pipeline

import (
	"sync"
	"time"

	"github.com/arskydev/dexwatch/internal/domain"
)

type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityHigh Priority = "high"
)

// PendingAlert is a candidate that failed a soft filter (or overflowed the
// per-minute quota) and is retained to fill unused notification headroom.
type PendingAlert struct {
	Candidate  domain.TokenCandidate
	Verdict    domain.RiskVerdict
	Priority   Priority
	EnqueuedAt time.Time
}

// Backlog is a bounded two-level queue: high priority drains first, FIFO
// within each level. When full, the oldest low-priority entry is evicted
// first; if none exists, the oldest high-priority entry goes.
type Backlog struct {
	capacity int
	maxAge   time.Duration

	mu   sync.Mutex
	high []PendingAlert
	low  []PendingAlert

	now func() time.Time
}

func NewBacklog(capacity int, maxAge time.Duration) *Backlog {
	if capacity < 1 {
		capacity = 1
	}
	return &Backlog{capacity: capacity, maxAge: maxAge, now: time.Now}
}

// Push enqueues an alert, evicting if at capacity. It reports whether an
// older entry was evicted to make room.
func (b *Backlog) Push(alert PendingAlert) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if alert.EnqueuedAt.IsZero() {
		alert.EnqueuedAt = b.now()
	}

	evicted := false
	if len(b.high)+len(b.low) >= b.capacity {
		if len(b.low) > 0 {
			b.low = b.low[1:]
		} else {
			b.high = b.high[1:]
		}
		evicted = true
	}

	if alert.Priority == PriorityHigh {
		b.high = append(b.high, alert)
	} else {
		b.low = append(b.low, alert)
	}
	return evicted
}

// Pop returns the next eligible entry, skipping entries older than the max
// age. The second return is false when the backlog is drained.
func (b *Backlog) Pop() (PendingAlert, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := b.now().Add(-b.maxAge)
	for {
		var alert PendingAlert
		switch {
		case len(b.high) > 0:
			alert, b.high = b.high[0], b.high[1:]
		case len(b.low) > 0:
			alert, b.low = b.low[0], b.low[1:]
		default:
			return PendingAlert{}, false
		}
		if b.maxAge > 0 && alert.EnqueuedAt.Before(cutoff) {
			continue
		}
		return alert, true
	}
}

func (b *Backlog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.high) + len(b.low)
}
