package billing

import "time"

// Clock abstracts time.Now() so "today" is always supplied by the caller and
// date advancement stays fully testable with injected dates.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
