package tensor

import (
	"fmt"

	"github.com/x448/float16"
)

// Cast converts t to the requested floating data type, preserving shape
// and memory layout. Supported conversions are between Float16, Float32
// and Float64; half precision goes through IEEE binary16 with
// round-to-nearest-even, the same host-side conversion inference
// runtimes apply to f16 model weights.
func Cast(t *RawTensor, dtype DataType) *RawTensor {
	if t.DType() == dtype {
		return t.Clone()
	}

	out := &RawTensor{
		data:   make([]byte, t.NumElements()*dtype.Size()),
		shape:  t.Shape().Clone(),
		stride: append([]int(nil), t.Strides()...),
		dtype:  dtype,
	}

	n := t.NumElements()
	switch {
	case t.DType() == Float16 && dtype == Float32:
		src, dst := t.AsFloat16(), out.AsFloat32()
		for i := 0; i < n; i++ {
			dst[i] = src[i].Float32()
		}
	case t.DType() == Float16 && dtype == Float64:
		src, dst := t.AsFloat16(), out.AsFloat64()
		for i := 0; i < n; i++ {
			dst[i] = float64(src[i].Float32())
		}
	case t.DType() == Float32 && dtype == Float16:
		src, dst := t.AsFloat32(), out.AsFloat16()
		for i := 0; i < n; i++ {
			dst[i] = float16.Fromfloat32(src[i])
		}
	case t.DType() == Float64 && dtype == Float16:
		src, dst := t.AsFloat64(), out.AsFloat16()
		for i := 0; i < n; i++ {
			dst[i] = float16.Fromfloat32(float32(src[i]))
		}
	case t.DType() == Float32 && dtype == Float64:
		src, dst := t.AsFloat32(), out.AsFloat64()
		for i := 0; i < n; i++ {
			dst[i] = float64(src[i])
		}
	case t.DType() == Float64 && dtype == Float32:
		src, dst := t.AsFloat64(), out.AsFloat32()
		for i := 0; i < n; i++ {
			dst[i] = float32(src[i])
		}
	default:
		panic(fmt.Sprintf("cast: unsupported conversion %s -> %s", t.DType(), dtype))
	}
	return out
}

// FromFloat16Bits creates a Float16 RawTensor from raw binary16 bit
// patterns in row-major order.
func FromFloat16Bits(bits []uint16, shape Shape) (*RawTensor, error) {
	if len(bits) != shape.NumElements() {
		return nil, fmt.Errorf("slice length %d does not match shape %v (%d elements)",
			len(bits), shape, shape.NumElements())
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	raw := &RawTensor{
		data:   make([]byte, len(bits)*Float16.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  Float16,
	}
	dst := raw.AsFloat16()
	for i, b := range bits {
		dst[i] = float16.Frombits(b)
	}
	return raw, nil
}
