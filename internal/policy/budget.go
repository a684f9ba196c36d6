package policy

import (
	"sync"
	"time"
)

const secondsPerDay = 86400

type agentBudget struct {
	day   int64
	spent float64
}

// BudgetTracker is a thread-safe per-agent daily USD cost accumulator with
// day rollover. Entries persist only for the process lifetime.
type BudgetTracker struct {
	mu      sync.Mutex
	budgets map[string]*agentBudget
	now     func() time.Time
}

// NewBudgetTracker constructs an empty tracker.
func NewBudgetTracker() *BudgetTracker {
	return &BudgetTracker{budgets: make(map[string]*agentBudget), now: time.Now}
}

func currentDay(t time.Time) int64 {
	return t.Unix() / secondsPerDay
}

// Check returns the remaining budget for today without mutating state. A
// stored entry from a prior day is treated as zero spend.
func (b *BudgetTracker) Check(agentID string, maxCostPerDay float64) float64 {
	today := currentDay(b.now())
	b.mu.Lock()
	defer b.mu.Unlock()
	budget, ok := b.budgets[agentID]
	if !ok || budget.day != today {
		return maxCostPerDay
	}
	remaining := maxCostPerDay - budget.spent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Record adds cost to today's spend for agentID, resetting the accumulator
// if the stored entry is from a previous day. No validation against a cap
// happens here — the policy engine decides whether spend is allowed.
func (b *BudgetTracker) Record(agentID string, cost float64) {
	today := currentDay(b.now())
	b.mu.Lock()
	defer b.mu.Unlock()
	budget, ok := b.budgets[agentID]
	if !ok || budget.day != today {
		budget = &agentBudget{day: today}
		b.budgets[agentID] = budget
	}
	budget.spent += cost
}

// SpentToday returns the total recorded spend for agentID today, or zero if
// nothing has been recorded since the last rollover.
func (b *BudgetTracker) SpentToday(agentID string) float64 {
	today := currentDay(b.now())
	b.mu.Lock()
	defer b.mu.Unlock()
	budget, ok := b.budgets[agentID]
	if !ok || budget.day != today {
		return 0
	}
	return budget.spent
}
