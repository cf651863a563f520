// Package billing rolls subscription billing dates forward across elapsed
// cycles. Like matching, it is pure: callers supply "today" and persist the
// results themselves, so the functions can run anywhere without coordination.
package billing

import (
	"time"

	"subtrackr/internal/models"
)

// DateLayout is the canonical serialization for billing dates. No time
// component, no timezone: a billing date is a calendar day.
const DateLayout = "2006-01-02"

// MaxIterations bounds the roll-forward loop at roughly 20 years of monthly
// advancement. Hitting it means the stored date is pathological or corrupted;
// the still-past candidate is returned rather than looping forever, and the
// cap hit is reported so callers can log or count it.
const MaxIterations = 240

// Lenient fallback layouts tried after DateLayout. Parsing is best-effort:
// a date that matches none of them leaves the subscription untouched.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// RollForward advances a stored next-billing-date through every fully elapsed
// cycle to the first occurrence on or after today, at day granularity.
// ok is false when the stored date does not parse; the caller must leave the
// stored value unchanged rather than treat it as an error. The result is a
// fixed point: rolling forward its own output with the same today returns the
// same date.
func RollForward(nextBillingDate string, cycle string, today time.Time) (next string, ok bool) {
	next, _, ok = rollForward(nextBillingDate, cycle, today)
	return next, ok
}

// RollForwardChecked is RollForward plus a capped flag that reports whether
// the iteration bound was hit before the candidate caught up with today.
func RollForwardChecked(nextBillingDate string, cycle string, today time.Time) (next string, capped bool, ok bool) {
	return rollForward(nextBillingDate, cycle, today)
}

func rollForward(nextBillingDate string, cycle string, today time.Time) (string, bool, bool) {
	candidate, ok := parseDate(nextBillingDate)
	if !ok {
		return "", false, false
	}

	startOfToday := truncateToDay(today)

	iterations := 0
	for candidate.Before(startOfToday) {
		if iterations >= MaxIterations {
			return candidate.Format(DateLayout), true, true
		}
		candidate = addCycle(candidate, cycle)
		iterations++
	}

	return candidate.Format(DateLayout), false, true
}

// AdvanceOne returns a copy of the subscription with its billing date rolled
// forward, plus whether anything changed. The input is never mutated and no
// input can make it fail: malformed dates degrade to an unchanged copy.
func AdvanceOne(sub models.Subscription, today time.Time) (models.Subscription, bool) {
	next, ok := RollForward(sub.NextBillingDate, sub.BillingCycle, today)
	if !ok || next == sub.NextBillingDate {
		return sub, false
	}

	sub.NextBillingDate = next
	return sub, true
}

// AdvanceAll applies AdvanceOne to every subscription, preserving input
// order. The second slice collects, in encounter order, only the entries that
// actually changed; that subset is what callers should persist, avoiding
// redundant writes for untouched rows.
func AdvanceAll(subs []models.Subscription, today time.Time) (all []models.Subscription, changed []models.Subscription) {
	all = make([]models.Subscription, 0, len(subs))
	for _, sub := range subs {
		advanced, didChange := AdvanceOne(sub, today)
		all = append(all, advanced)
		if didChange {
			changed = append(changed, advanced)
		}
	}
	return all, changed
}

// ParseDate parses a stored billing date in the canonical layout or one of
// the tolerated fallbacks, truncated to day granularity.
func ParseDate(value string) (time.Time, bool) {
	return parseDate(value)
}

func addCycle(date time.Time, cycle string) time.Time {
	if cycle == models.BillingCycleYearly {
		return date.AddDate(1, 0, 0)
	}
	return date.AddDate(0, 1, 0)
}

func parseDate(value string) (time.Time, bool) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, true
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return truncateToDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
