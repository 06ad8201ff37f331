package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
// For shift kernels the axis order is always logical
// [batch, channel, spatial...], regardless of memory layout.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides are in element units: stride[i] = product of all dimensions after i.
// For a [batch, channel, spatial...] shape this is the channel-grouped
// (channels-first) layout.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// ChannelsLastStrides calculates strides for the channel-interleaved
// layout of a [batch, channel, spatial...] shape: the channel axis is
// innermost in memory while the logical axis order is unchanged.
// Requires rank >= 3 (batch, channel and at least one spatial axis).
func (s Shape) ChannelsLastStrides() []int {
	if len(s) < 3 {
		panic(fmt.Sprintf("channels-last strides need rank >= 3, got shape %v", s))
	}
	strides := make([]int, len(s))
	strides[1] = 1 // channel axis innermost
	acc := s[1]
	for i := len(s) - 1; i >= 2; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	strides[0] = acc
	return strides
}
