package conv

import (
	"fmt"
	"math"
)

// IntToUint32 converts int to uint32, failing for negative or too-large values.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// Int64ToInt converts int64 to int, failing when int is narrower.
func Int64ToInt(v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int", v)
	}
	return int(v), nil
}

// ParseIndex converts a non-negative int64 (for example a decoded record
// field) into a slice index.
func ParseIndex(v int64) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative index %d", v)
	}
	return Int64ToInt(v)
}
