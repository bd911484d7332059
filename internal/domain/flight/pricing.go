package flight

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingPolicy derives a flight's current price from its attempt log.
// With at least Threshold attempts inside SurgeWindow the price is
// round(base * Multiplier); otherwise it is the base price.
type PricingPolicy struct {
	SurgeWindow time.Duration
	Retention   time.Duration
	Threshold   int
	Multiplier  decimal.Decimal
}

// DefaultPricingPolicy returns the 5 minute / 3 attempts / +10% rule
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		SurgeWindow: 5 * time.Minute,
		Retention:   10 * time.Minute,
		Threshold:   3,
		Multiplier:  decimal.RequireFromString("1.1"),
	}
}

// RecordAttempt appends an attempt and recomputes the price. It reports whether surge pricing applies.
func (p PricingPolicy) RecordAttempt(f *Flight, sessionID string, now time.Time) bool {
	if sessionID == "" {
		sessionID = "unknown"
	}
	f.Attempts = append(f.Attempts, Attempt{Timestamp: now.UTC(), SessionID: sessionID})
	return p.Recompute(f, now)
}

// Recompute prunes attempts older than the retention window and resets CurrentPrice.
// The result depends only on the attempt log, the base price and now.
func (p PricingPolicy) Recompute(f *Flight, now time.Time) bool {
	recentCutoff := now.Add(-p.SurgeWindow)
	retainCutoff := now.Add(-p.Retention)

	recent := 0
	retained := make([]Attempt, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		if a.Timestamp.After(recentCutoff) {
			recent++
		}
		if a.Timestamp.After(retainCutoff) {
			retained = append(retained, a)
		}
	}
	f.Attempts = retained

	surged := recent >= p.Threshold
	if surged {
		f.CurrentPrice = f.BasePrice.Mul(p.Multiplier).Round(0)
	} else {
		f.CurrentPrice = f.BasePrice
	}
	f.UpdatedAt = now.UTC()
	return surged
}
