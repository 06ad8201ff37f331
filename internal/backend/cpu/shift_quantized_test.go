package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guochengqian/sparseshift/internal/tensor"
)

func int64Weights(t *testing.T, data []int64, channels, dims int) *tensor.RawTensor {
	t.Helper()
	w, err := tensor.FromSlice(data, tensor.Shape{channels, dims})
	require.NoError(t, err)
	return w
}

func TestShiftQuantized_BorderClamp(t *testing.T) {
	backend := New()

	input, err := tensor.FromSlice([]uint8{10, 20, 30}, tensor.Shape{1, 1, 3})
	require.NoError(t, err)
	weights := int64Weights(t, []int64{1}, 1, 1)

	out := backend.ShiftQuantized1DForward(input, weights, PaddingBorder, 0, 0)
	assert.Equal(t, tensor.Uint8, out.DType())
	assert.Equal(t, []uint8{10, 10, 20}, out.AsUint8())
}

func TestShiftQuantized_PeriodicWrap(t *testing.T) {
	backend := New()

	input, err := tensor.FromSlice([]uint8{10, 20, 30}, tensor.Shape{1, 1, 3})
	require.NoError(t, err)
	weights := int64Weights(t, []int64{-1}, 1, 1)

	out := backend.ShiftQuantized1DForward(input, weights, PaddingPeriodic, 0, 0)
	assert.Equal(t, []uint8{20, 30, 10}, out.AsUint8())
}

func TestShiftQuantized_ZeroPointSubstitution(t *testing.T) {
	// Out-of-range reads under zeros padding produce the quantized zero
	// point, not numeric zero.
	backend := New()

	input, err := tensor.FromSlice([]uint8{10, 20, 30}, tensor.Shape{1, 1, 3})
	require.NoError(t, err)
	weights := int64Weights(t, []int64{1}, 1, 1)

	out := backend.ShiftQuantized1DForward(input, weights, PaddingZeros, 128, 0)
	assert.Equal(t, []uint8{128, 10, 20}, out.AsUint8())
}

func TestShiftQuantized_WeightsZeroPointBias(t *testing.T) {
	// Stored offset 3 with weightsZeroPoint 2 is an effective shift of 1.
	backend := New()

	input, err := tensor.FromSlice([]uint8{10, 20, 30}, tensor.Shape{1, 1, 3})
	require.NoError(t, err)
	weights := int64Weights(t, []int64{3}, 1, 1)

	out := backend.ShiftQuantized1DForward(input, weights, PaddingBorder, 0, 2)
	assert.Equal(t, []uint8{10, 10, 20}, out.AsUint8())
}

func TestShiftQuantized_Int32(t *testing.T) {
	backend := New()

	input, err := tensor.FromSlice([]int32{-5, 6, 7, 8}, tensor.Shape{1, 1, 4})
	require.NoError(t, err)
	weights := int64Weights(t, []int64{2}, 1, 1)

	out := backend.ShiftQuantized1DForward(input, weights, PaddingReflect, 0, 0)
	assert.Equal(t, tensor.Int32, out.DType())
	// Reflected reads: x[-2]=x[2], x[-1]=x[1].
	assert.Equal(t, []int32{7, 6, -5, 6}, out.AsInt32())
}

func TestShiftQuantized_2DPerChannel(t *testing.T) {
	backend := New()

	input, err := tensor.FromSlice([]uint8{
		1, 2,
		3, 4,

		5, 6,
		7, 8,
	}, tensor.Shape{1, 2, 2, 2})
	require.NoError(t, err)
	// Channel 0 shifts down one row; channel 1 shifts right one column.
	weights := int64Weights(t, []int64{1, 0, 0, 1}, 2, 2)

	out := backend.ShiftQuantized2DForward(input, weights, PaddingZeros, 0, 0)
	assert.Equal(t, []uint8{
		0, 0,
		1, 2,

		0, 5,
		0, 7,
	}, out.AsUint8())
}

func TestShiftQuantized_LayoutEquivalence(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(31))

	shape := tensor.Shape{2, 3, 4, 5}
	data := make([]uint8, shape.NumElements())
	for i := range data {
		data[i] = uint8(rng.Intn(256))
	}
	input, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	weights := int64Weights(t, []int64{1, -2, 0, 3, -1, 2}, 3, 2)

	interleaved := tensor.ToChannelsLast(input)
	for _, mode := range allPaddings {
		grouped := backend.ShiftQuantized2DForward(input, weights, mode, 7, 0)
		fromCL := backend.ShiftQuantized2DForward(interleaved, weights, mode, 7, 0)
		assert.True(t, fromCL.IsChannelsLast())
		assert.Equal(t, grouped.AsUint8(), tensor.ToContiguous(fromCL).AsUint8(), "mode=%s", mode)
	}
}

func TestShiftQuantized_BadArgsPanic(t *testing.T) {
	backend := New()

	input, err := tensor.FromSlice([]uint8{1, 2, 3}, tensor.Shape{1, 1, 3})
	require.NoError(t, err)

	// Offsets must be int64.
	w32, err := tensor.FromSlice([]int32{1}, tensor.Shape{1, 1})
	require.NoError(t, err)
	assert.Panics(t, func() { backend.ShiftQuantized1DForward(input, w32, PaddingZeros, 0, 0) })

	// Float inputs take the differentiable path instead.
	f64, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{1, 1, 3})
	require.NoError(t, err)
	w := int64Weights(t, []int64{1}, 1, 1)
	assert.Panics(t, func() { backend.ShiftQuantized1DForward(f64, w, PaddingZeros, 0, 0) })
}
