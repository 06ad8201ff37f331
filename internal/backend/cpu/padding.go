package cpu

import (
	"fmt"
	"strings"
)

// PaddingMode selects how a spatial read position outside the valid
// index range is resolved.
type PaddingMode int

// Padding modes, in wire order: callers passing ordinals 0-4 get
// exactly this mapping.
const (
	PaddingZeros PaddingMode = iota
	PaddingBorder
	PaddingPeriodic
	PaddingReflect
	PaddingSymmetric
)

// String returns a human-readable padding mode name.
func (p PaddingMode) String() string {
	switch p {
	case PaddingZeros:
		return "zeros"
	case PaddingBorder:
		return "border"
	case PaddingPeriodic:
		return "periodic"
	case PaddingReflect:
		return "reflect"
	case PaddingSymmetric:
		return "symmetric"
	default:
		return "unknown"
	}
}

// PaddingByName maps a padding name to its mode.
// Allowed: "zeros", "border", "periodic", "reflect", "symmetric".
func PaddingByName(name string) (PaddingMode, error) {
	switch strings.ToLower(name) {
	case "zeros":
		return PaddingZeros, nil
	case "border":
		return PaddingBorder, nil
	case "periodic":
		return PaddingPeriodic, nil
	case "reflect":
		return PaddingReflect, nil
	case "symmetric":
		return PaddingSymmetric, nil
	default:
		return 0, fmt.Errorf("incorrect padding option: %q", name)
	}
}

// mod returns a modulo b, always non-negative for b > 0.
func mod(a, b int) int {
	return (b + a%b) % b
}

// resolveIndex maps a requested index onto [0, length) under the given
// padding mode. The second return is false only when the mode is
// PaddingZeros and the index is out of range; the caller must then
// substitute the background value instead of reading.
//
// Reflect mirrors at the outermost elements (period 2*(length-1));
// Symmetric mirrors between the outermost element and an implicit edge
// (period 2*length). Reflect degenerates to index 0 when length == 1.
func resolveIndex(index, length int, mode PaddingMode) (int, bool) {
	if index >= 0 && index < length {
		return index, true
	}
	switch mode {
	case PaddingZeros:
		return 0, false
	case PaddingBorder:
		if index >= length {
			return length - 1, true
		}
		return 0, true
	case PaddingPeriodic:
		return mod(index, length), true
	case PaddingReflect:
		if length == 1 {
			return 0, true
		}
		neg := 0
		abs := index
		if index < 0 {
			neg = 1
			abs = -index
		}
		out := mod(index, length-1)
		if (neg+(abs-neg)/(length-1))&1 == 1 {
			out = length - 1 - out
		}
		return out, true
	case PaddingSymmetric:
		neg := 0
		abs := index
		if index < 0 {
			neg = 1
			abs = -index
		}
		out := mod(index, length)
		if (neg+(abs-neg)/length)&1 == 1 {
			out = length - 1 - out
		}
		return out, true
	default:
		panic(fmt.Sprintf("unknown padding mode %d", mode))
	}
}
