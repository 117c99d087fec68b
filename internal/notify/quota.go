package notify

import (
	"sync"
	"time"
)

// Quota counts notifications delivered in the current minute. The window
// resets exactly at each minute boundary; the target is a soft cap enforced
// at scheduling time, never on attempts already in flight.
type Quota struct {
	target int

	mu          sync.Mutex
	count       int
	windowStart time.Time

	now func() time.Time
}

func NewQuota(target int) *Quota {
	return &Quota{target: target, now: time.Now}
}

func (q *Quota) Headroom() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	if remaining := q.target - q.count; remaining > 0 {
		return remaining
	}
	return 0
}

func (q *Quota) Increment() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	q.count++
}

func (q *Quota) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	return q.count
}

// roll resets the counter when the clock has crossed into a new minute.
// Callers must hold q.mu.
func (q *Quota) roll() {
	window := q.now().Truncate(time.Minute)
	if !window.Equal(q.windowStart) {
		q.windowStart = window
		q.count = 0
	}
}
