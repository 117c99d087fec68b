package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arskydev/dexwatch/internal/domain"
)

func pending(address string, priority Priority) PendingAlert {
	return PendingAlert{
		Candidate: domain.TokenCandidate{Chain: "solana", Address: address},
		Priority:  priority,
	}
}

func TestHighPriorityDrainsFirstFIFOWithin(t *testing.T) {
	backlog := NewBacklog(10, time.Hour)

	backlog.Push(pending("low1", PriorityLow))
	backlog.Push(pending("high1", PriorityHigh))
	backlog.Push(pending("low2", PriorityLow))
	backlog.Push(pending("high2", PriorityHigh))

	var order []string
	for {
		alert, ok := backlog.Pop()
		if !ok {
			break
		}
		order = append(order, alert.Candidate.Address)
	}
	assert.Equal(t, []string{"high1", "high2", "low1", "low2"}, order)
}

func TestCapacityEvictsOldestLowFirst(t *testing.T) {
	backlog := NewBacklog(3, time.Hour)

	backlog.Push(pending("high1", PriorityHigh))
	backlog.Push(pending("low1", PriorityLow))
	backlog.Push(pending("low2", PriorityLow))

	evicted := backlog.Push(pending("high2", PriorityHigh))
	assert.True(t, evicted)
	assert.Equal(t, 3, backlog.Len())

	var order []string
	for {
		alert, ok := backlog.Pop()
		if !ok {
			break
		}
		order = append(order, alert.Candidate.Address)
	}
	assert.Equal(t, []string{"high1", "high2", "low2"}, order, "low1 was evicted")
}

func TestCapacityEvictsOldestHighWhenNoLow(t *testing.T) {
	backlog := NewBacklog(2, time.Hour)

	backlog.Push(pending("high1", PriorityHigh))
	backlog.Push(pending("high2", PriorityHigh))
	evicted := backlog.Push(pending("high3", PriorityHigh))
	assert.True(t, evicted)

	alert, ok := backlog.Pop()
	require.True(t, ok)
	assert.Equal(t, "high2", alert.Candidate.Address)
}

func TestPopSkipsExpiredEntries(t *testing.T) {
	backlog := NewBacklog(10, 30*time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	backlog.now = func() time.Time { return now }

	backlog.Push(PendingAlert{
		Candidate:  domain.TokenCandidate{Address: "stale"},
		Priority:   PriorityLow,
		EnqueuedAt: now.Add(-time.Hour),
	})
	backlog.Push(pending("fresh", PriorityLow))

	alert, ok := backlog.Pop()
	require.True(t, ok)
	assert.Equal(t, "fresh", alert.Candidate.Address)

	_, ok = backlog.Pop()
	assert.False(t, ok)
}

func TestNonPositiveCapacityHoldsOneEntry(t *testing.T) {
	backlog := NewBacklog(0, time.Hour)

	backlog.Push(pending("high1", PriorityHigh))
	evicted := backlog.Push(pending("high2", PriorityHigh))

	assert.True(t, evicted)
	assert.Equal(t, 1, backlog.Len())

	alert, ok := backlog.Pop()
	require.True(t, ok)
	assert.Equal(t, "high2", alert.Candidate.Address)
}

func TestPopOnEmptyBacklog(t *testing.T) {
	backlog := NewBacklog(10, time.Hour)
	_, ok := backlog.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, backlog.Len())
}
