// Package safecast implements functions to safely cast types to avoid panics
package safecast

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

const (
	errUint16RangeExceeded = "value %d exceeds uint16 range"
)

// IntToUint16 safely converts an int to uint16 using cast and checks for overflow
func IntToUint16(value int) (uint16, error) {
	if value < 0 || value > math.MaxUint16 {
		return 0, fmt.Errorf(errUint16RangeExceeded, value)
	}

	return cast.ToUint16E(value)
}

// Uint64ToUint16 safely converts an uint64 to uint16 using cast and checks for overflow
func Uint64ToUint16(value uint64) (uint16, error) {
	if value > math.MaxUint16 {
		return 0, fmt.Errorf(errUint16RangeExceeded, value)
	}

	return cast.ToUint16E(value)
}
