// Package safe guards the unsigned block heights against signed storage columns.
package safe

import (
	"fmt"
	"math"
)

// Int64 converts a height to the int64 range of SQL integer columns.
func Int64[T ~uint | ~uint32 | ~uint64](v T) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("height %d exceeds int64", v)
	}
	return int64(v), nil
}

// Sub returns a-b clamped at zero, so a lagging source never wraps around.
func Sub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
