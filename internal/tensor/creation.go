package tensor

import "fmt"

// FromSlice creates a channel-grouped RawTensor from a flat slice of
// values in row-major order.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 4})
func FromSlice[T DType](values []T, shape Shape) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("slice length %d does not match shape %v (%d elements)",
			len(values), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	copy(sliceOf[T](raw), values)
	return raw, nil
}

// sliceOf returns the typed view of a RawTensor's buffer for a native
// element type.
func sliceOf[T DType](r *RawTensor) []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	case int32:
		return any(r.AsInt32()).([]T)
	case int64:
		return any(r.AsInt64()).([]T)
	case uint8:
		return any(r.AsUint8()).([]T)
	default:
		panic("unsupported element type")
	}
}

// Data returns the typed view of a RawTensor's buffer.
// Panics if T does not match the tensor's dtype.
func Data[T DType](r *RawTensor) []T {
	var dummy T
	if inferDataType(dummy) != r.DType() {
		panic(fmt.Sprintf("tensor dtype is %s, requested view does not match", r.DType()))
	}
	return sliceOf[T](r)
}

// ToChannelsLast returns a copy of t whose memory uses the
// channel-interleaved layout. The logical shape is unchanged; only the
// strides (and element order in memory) differ. Kernels reading both
// tensors through their strides observe identical logical content.
func ToChannelsLast(t *RawTensor) *RawTensor {
	if len(t.Shape()) < 3 {
		panic(fmt.Sprintf("channels-last conversion needs rank >= 3, got shape %v", t.Shape()))
	}
	out, err := NewRawChannelsLast(t.Shape(), t.DType())
	if err != nil {
		panic(fmt.Sprintf("channels-last conversion: %v", err))
	}
	permuteCopy(out, t)
	return out
}

// ToContiguous returns a copy of t in the channel-grouped (row-major)
// layout.
func ToContiguous(t *RawTensor) *RawTensor {
	out, err := NewRaw(t.Shape(), t.DType())
	if err != nil {
		panic(fmt.Sprintf("contiguous conversion: %v", err))
	}
	permuteCopy(out, t)
	return out
}

// permuteCopy copies every logical element from src to dst, each
// addressed through its own strides. Shapes must match.
func permuteCopy(dst, src *RawTensor) {
	shape := src.Shape()
	total := shape.NumElements()
	ds, ss := dst.Strides(), src.Strides()
	esize := src.DType().Size()
	dBytes, sBytes := dst.Data(), src.Data()

	idx := make([]int, len(shape))
	for i := 0; i < total; i++ {
		di, si := 0, 0
		for ax := range idx {
			di += idx[ax] * ds[ax]
			si += idx[ax] * ss[ax]
		}
		copy(dBytes[di*esize:(di+1)*esize], sBytes[si*esize:(si+1)*esize])

		for ax := len(idx) - 1; ax >= 0; ax-- {
			idx[ax]++
			if idx[ax] < shape[ax] {
				break
			}
			idx[ax] = 0
		}
	}
}
