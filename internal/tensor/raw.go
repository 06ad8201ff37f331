package tensor

import (
	"fmt"
	"unsafe"

	"github.com/x448/float16"
)

// RawTensor is the low-level tensor representation: a flat byte buffer
// interpreted through an explicit shape and per-axis element strides.
// Strides may describe either the channel-grouped (row-major) or the
// channel-interleaved (channels-last) layout; kernels index through the
// strides and never assume contiguity.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int // element units, not bytes
	dtype  DataType
	offset int
}

// NewRaw creates a new RawTensor with the given shape and type in the
// channel-grouped (row-major) layout. Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()
	return &RawTensor{
		data:   make([]byte, byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		offset: 0,
	}, nil
}

// NewRawChannelsLast creates a zero-initialized RawTensor whose memory
// uses the channel-interleaved layout while the logical shape stays
// [batch, channel, spatial...].
func NewRawChannelsLast(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()
	return &RawTensor{
		data:   make([]byte, byteSize),
		shape:  shape.Clone(),
		stride: shape.ChannelsLastStrides(),
		dtype:  dtype,
		offset: 0,
	}, nil
}

// NewRawLike creates a zero-initialized RawTensor with the same shape,
// dtype and memory layout as t.
func NewRawLike(t *RawTensor) *RawTensor {
	return &RawTensor{
		data:   make([]byte, t.shape.NumElements()*t.dtype.Size()),
		shape:  t.shape.Clone(),
		stride: append([]int(nil), t.stride...),
		dtype:  t.dtype,
		offset: 0,
	}
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides in element units.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data[r.offset:]
}

// IsChannelsLast reports whether the tensor's strides describe the
// channel-interleaved layout. Shapes of rank < 3 have no channel axis
// distinct from the innermost axis and always report false.
func (r *RawTensor) IsChannelsLast() bool {
	if len(r.shape) < 3 {
		return false
	}
	expected := r.shape.ChannelsLastStrides()
	for i := range expected {
		if r.stride[i] != expected[i] {
			return false
		}
	}
	// A fully channels-first tensor with C == 1 matches both stride
	// patterns; treat it as channel-grouped.
	contiguous := r.shape.ComputeStrides()
	for i := range contiguous {
		if r.stride[i] != contiguous[i] {
			return true
		}
	}
	return false
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.data[r.offset:]
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	data := r.data[r.offset:]
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat16 interprets the data as []float16.Float16 (IEEE 754 binary16
// bit patterns). Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", r.dtype))
	}
	data := r.data[r.offset:]
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	data := r.data[r.offset:]
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	data := r.data[r.offset:]
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.data[r.offset:]
}

// Clone creates a shallow copy sharing the underlying buffer.
// The shift kernels never write through aliased views, so no
// copy-on-write machinery is needed here.
func (r *RawTensor) Clone() *RawTensor {
	return &RawTensor{
		data:   r.data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		offset: r.offset,
	}
}
