// Package timeutil holds small time helpers shared across the pipeline.
package timeutil

import "time"

// timestamp layouts the provider has been observed to use, tried in order.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a provider timestamp, returning the zero time and
// false when the input does not match any known layout.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DelayMinutes returns the signed difference between an estimated and a
// scheduled timestamp in minutes. Either input failing to parse yields 0.
func DelayMinutes(scheduled, estimated string) float64 {
	sched, ok := ParseTimestamp(scheduled)
	if !ok {
		return 0
	}
	est, ok := ParseTimestamp(estimated)
	if !ok {
		return 0
	}
	return est.Sub(sched).Minutes()
}
