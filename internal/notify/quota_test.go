package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestQuota(target int) (*Quota, *time.Time) {
	quota := NewQuota(target)
	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	quota.now = func() time.Time { return now }
	return quota, &now
}

func TestHeadroomDecreasesWithIncrements(t *testing.T) {
	quota, _ := newTestQuota(5)

	assert.Equal(t, 5, quota.Headroom())
	for i := 0; i < 5; i++ {
		quota.Increment()
	}
	assert.Equal(t, 0, quota.Headroom())
	assert.Equal(t, 5, quota.Count())
}

func TestResetsAtMinuteBoundary(t *testing.T) {
	quota, now := newTestQuota(5)

	for i := 0; i < 5; i++ {
		quota.Increment()
	}
	assert.Equal(t, 0, quota.Headroom())

	// 29 seconds later, still inside the same minute.
	*now = now.Add(29 * time.Second)
	assert.Equal(t, 0, quota.Headroom())

	// Crossing the boundary resets the count exactly once.
	*now = now.Add(time.Second)
	assert.Equal(t, 5, quota.Headroom())
	assert.Equal(t, 0, quota.Count())
}

func TestResetHappensOncePerMinute(t *testing.T) {
	quota, now := newTestQuota(5)

	quota.Increment()
	*now = now.Add(31 * time.Second) // into the next minute
	quota.Increment()
	quota.Increment()

	assert.Equal(t, 2, quota.Count(), "first increment belonged to the previous window")
}

func TestHeadroomNeverNegative(t *testing.T) {
	quota, _ := newTestQuota(2)

	for i := 0; i < 4; i++ {
		quota.Increment()
	}
	assert.Equal(t, 0, quota.Headroom())
	assert.Equal(t, 4, quota.Count(), "delivery attempts in flight may exceed the soft cap")
}
