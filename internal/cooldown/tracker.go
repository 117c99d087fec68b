package cooldown

import (
	"strings"
	"sync"
	"time"
)

// Tracker suppresses repeat notifications for the same token identity within
// a configurable window. Identity is tracked per chain by normalized contract
// address and, separately, by normalized display name: a match on either
// dimension blocks, so the same project cannot re-alert through a different
// pair address.
type Tracker struct {
	window time.Duration

	mu        sync.Mutex
	byAddress map[string]time.Time
	byName    map[string]time.Time

	now func() time.Time
}

func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window:    window,
		byAddress: make(map[string]time.Time),
		byName:    make(map[string]time.Time),
		now:       time.Now,
	}
}

// IsAllowed reports whether a notification for (chain, address, name) is
// outside every active cooldown. It never mutates cooldown state beyond
// evicting expired entries, so repeated calls without an intervening
// MarkSent always agree.
func (t *Tracker) IsAllowed(chain, address, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.active(t.byAddress, key(chain, address), now) {
		return false
	}
	if t.active(t.byName, key(chain, name), now) {
		return false
	}
	return true
}

// MarkSent records a confirmed delivery, starting the cooldown window on
// both identity dimensions.
func (t *Tracker) MarkSent(chain, address, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if k := key(chain, address); k != "" {
		t.byAddress[k] = now
	}
	if k := key(chain, name); k != "" {
		t.byName[k] = now
	}
}

// Sweep evicts expired entries to bound memory. Expiry is checked lazily on
// lookup anyway, so sweeping is optional.
func (t *Tracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for _, entries := range []map[string]time.Time{t.byAddress, t.byName} {
		for k, sentAt := range entries {
			if now.Sub(sentAt) >= t.window {
				delete(entries, k)
			}
		}
	}
}

func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	count := 0
	for _, sentAt := range t.byAddress {
		if now.Sub(sentAt) < t.window {
			count++
		}
	}
	return count
}

func (t *Tracker) active(entries map[string]time.Time, k string, now time.Time) bool {
	if k == "" {
		return false
	}
	sentAt, ok := entries[k]
	if !ok {
		return false
	}
	if now.Sub(sentAt) >= t.window {
		delete(entries, k)
		return false
	}
	return true
}

func key(chain, identity string) string {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if identity == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(chain)) + ":" + identity
}
