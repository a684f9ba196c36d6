package policy

import (
	"sync"
	"time"
)

const rateWindow = 60 * time.Second

// RateLimiter enforces a sliding 60-second request window per agent. Check
// and Record are separately atomic; callers must call Check before Record
// and only Record when the overall decision is allow, or denied calls would
// inflate the window (spec §4.4).
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewRateLimiter constructs an empty limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string][]time.Time), now: time.Now}
}

// Check prunes timestamps older than 60s and reports whether the pruned
// count is strictly less than limit. It does not record a new timestamp.
func (r *RateLimiter) Check(agentID string, limit int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	pruned := r.pruneLocked(agentID)
	return len(pruned) < limit
}

// Record appends the current timestamp to agentID's window.
func (r *RateLimiter) Record(agentID string) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows[agentID] = append(r.windows[agentID], now)
}

// CheckAndRecord prunes agentID's window, and if the pruned count is
// strictly less than limit, records the current timestamp before releasing
// the lock and reports true. Holding r.mu across both steps closes the gap
// between a separate Check and Record that concurrent callers could
// otherwise both pass.
func (r *RateLimiter) CheckAndRecord(agentID string, limit int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	pruned := r.pruneLocked(agentID)
	if len(pruned) >= limit {
		return false
	}
	r.windows[agentID] = append(pruned, r.now())
	return true
}

// pruneLocked removes timestamps older than the 60s cutoff and stores the
// pruned slice back. Caller must hold r.mu.
func (r *RateLimiter) pruneLocked(agentID string) []time.Time {
	cutoff := r.now().Add(-rateWindow)
	timestamps := r.windows[agentID]
	kept := timestamps[:0:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.windows[agentID] = kept
	return kept
}
