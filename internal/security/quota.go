package security

import (
	"fmt"
	"time"
)

const (
	actionWindow = time.Hour
	costWindow   = 24 * time.Hour
)

// Usage is a snapshot of the rolling counters.
type Usage struct {
	ActionsThisHour int
	CostTodayCents  int
}

// charge is one recorded action.
type charge struct {
	at    time.Time
	cents int
}

// RecordAction charges one action and costCents against the session quotas.
// Both quotas are rolling: an action counts against the hourly limit for one
// hour after it was recorded and against the daily cost limit for 24 hours.
// It either records the action or nothing. A limit of zero disables that quota.
func (p *Policy) RecordAction(costCents int) error {
	if costCents < 0 {
		return fmt.Errorf("invalid action cost %d", costCents)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	p.expireCharges(now)
	actions, cost := p.usageAt(now)

	if p.maxActionsPerHour > 0 && actions+1 > p.maxActionsPerHour {
		return &QuotaExceededError{Kind: QuotaActionsPerHour, Limit: p.maxActionsPerHour, Used: actions}
	}
	if p.maxCostPerDayCents > 0 && cost+costCents > p.maxCostPerDayCents {
		return &QuotaExceededError{Kind: QuotaCostPerDay, Limit: p.maxCostPerDayCents, Used: cost}
	}

	p.charges = append(p.charges, charge{at: now, cents: costCents})
	return nil
}

// Usage returns the current counters.
func (p *Policy) Usage() Usage {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	p.expireCharges(now)
	actions, cost := p.usageAt(now)
	return Usage{ActionsThisHour: actions, CostTodayCents: cost}
}

// expireCharges drops charges older than the longest window. Callers hold p.mu.
func (p *Policy) expireCharges(now time.Time) {
	i := 0
	for i < len(p.charges) && now.Sub(p.charges[i].at) >= costWindow {
		i++
	}
	if i > 0 {
		p.charges = append(p.charges[:0], p.charges[i:]...)
	}
}

// usageAt sums the charges inside each window. Callers hold p.mu.
func (p *Policy) usageAt(now time.Time) (actions, cents int) {
	for _, c := range p.charges {
		if now.Sub(c.at) < actionWindow {
			actions++
		}
		cents += c.cents
	}
	return actions, cents
}
