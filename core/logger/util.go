package logger

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// Outcome is the value written to the outcome attribute of summary lines.
func Outcome(err error) string {
	return lo.Ternary(err == nil, "ok", "fail")
}

// Took is RoundMS(time.Since(start)).
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS clamps negatives to zero and rounds to whole milliseconds.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Preview renders at most limit values as a comma separated list; the
// flag is set when values were cut off.
func Preview(values []string, limit int) (string, bool) {
	shown := lo.Subset(values, 0, uint(max(limit, 0)))
	return strings.Join(shown, ", "), len(shown) < len(values)
}
