// Copyright © 2025 The Gomon Project.

package model

import (
	"math"
	"time"
)

type (
	// Counter is the set of raw kernel counter types a rate is derived from.
	Counter interface {
		~int32 | ~int64 | ~uint32 | ~uint64 | ~float64
	}

	// Number is the set of value types that optional values may be summed over.
	Number interface {
		Counter | ~int
	}
)

// delta computes end-begin signed, so a counter rollback yields a negative value.
func delta[T Counter](begin, end *T) (float64, bool) {
	if begin == nil || end == nil {
		return 0, false
	}
	return float64(*end) - float64(*begin), true
}

// UsecPct is the percentage of elapsed time covered by a microsecond counter's
// change. Absent operands or a non-positive elapsed time yield nil.
func UsecPct[T Counter](begin, end *T, elapsed time.Duration) *float64 {
	d, ok := delta(begin, end)
	if !ok || elapsed <= 0 {
		return nil
	}
	v := d / (float64(elapsed) / float64(time.Microsecond)) * 100
	return &v
}

// CountPerSec is a counter's change per second of elapsed time. Absent
// operands or a non-positive elapsed time yield nil.
func CountPerSec[T Counter](begin, end *T, elapsed time.Duration) *float64 {
	d, ok := delta(begin, end)
	if !ok || elapsed <= 0 {
		return nil
	}
	v := d / elapsed.Seconds()
	return &v
}

// CountPerSecU64 is CountPerSec truncated into an unsigned rate, negative rates saturate to 0.
func CountPerSecU64[T Counter](begin, end *T, elapsed time.Duration) *uint64 {
	r := CountPerSec(begin, end, elapsed)
	if r == nil {
		return nil
	}
	var v uint64
	switch {
	case *r <= 0 || math.IsNaN(*r):
	case *r >= math.MaxUint64:
		v = math.MaxUint64
	default:
		v = uint64(*r)
	}
	return &v
}

// OptAdd sums two optional values, an absent value is the identity.
func OptAdd[T Number](a, b *T) *T {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := *a + *b
	return &v
}

// Ratio is part/total as a percentage, nil if either is absent or total is 0.
func Ratio[T Counter](part, total *T) *float64 {
	if part == nil || total == nil || *total == 0 {
		return nil
	}
	v := float64(*part) * 100 / float64(*total)
	return &v
}

// ptr returns a pointer to a copy of v.
func ptr[T any](v T) *T {
	return &v
}
