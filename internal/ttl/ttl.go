// Package ttl implements the lease arithmetic for workspace sessions.
// All functions are pure; timestamps are Unix epoch seconds.
package ttl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultLease is the finite lease applied when autokill is switched on.
const DefaultLease int64 = 7200

// InfiniteMarker is the presentation value for sessions that never expire.
const InfiniteMarker = "∞ Infinite"

// IsInfinite reports whether a TTL means "never expires".
func IsInfinite(ttlSeconds int64) bool {
	return ttlSeconds == 0
}

// ExpiresAt returns the expiry instant of a finite lease. The result is
// meaningless for infinite leases; callers must check IsInfinite first.
func ExpiresAt(created, ttlSeconds int64) int64 {
	return created + ttlSeconds
}

// Remaining returns the seconds left on a finite lease, floored at zero.
func Remaining(created, ttlSeconds, now int64) int64 {
	left := ExpiresAt(created, ttlSeconds) - now
	if left < 0 {
		return 0
	}
	return left
}

// Toggle returns the new TTL for an autokill switch: infinite mode is the
// zero sentinel, finite mode is the fixed default lease.
func Toggle(makeInfinite bool) int64 {
	if makeInfinite {
		return 0
	}
	return DefaultLease
}

// ExtendResult reports the outcome of a lease extension.
type ExtendResult struct {
	AlreadyInfinite bool
	OldRemaining    int64
	Added           int64
	NewTTL          int64
}

// Extend adds time to whatever is left on a lease. The stored creation
// instant is unchanged, so the new TTL is computed relative to elapsed
// time: remaining + added. An expired lease contributes zero remaining;
// extension never resets elapsed time. An infinite lease is left untouched.
func Extend(created, currentTTL, now, addSeconds int64) ExtendResult {
	if IsInfinite(currentTTL) {
		return ExtendResult{AlreadyInfinite: true, NewTTL: currentTTL}
	}
	remaining := Remaining(created, currentTTL, now)
	return ExtendResult{
		OldRemaining: remaining,
		Added:        addSeconds,
		NewTTL:       remaining + addSeconds,
	}
}

// ParseTimestamp accepts a creation timestamp as either a raw epoch
// integer or ISO-8601 text (with or without a zone; a bare "Z" suffix is
// accepted). Zoneless values are interpreted as UTC.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatClock renders a duration in seconds as "Xh Ym".
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}
