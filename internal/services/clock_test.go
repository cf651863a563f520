package services

import "time"

// fixedClock pins "now" so billing advancement is deterministic in tests
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
