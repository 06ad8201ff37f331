package cpu

import (
	"fmt"
	"math"

	"github.com/guochengqian/sparseshift/internal/tensor"
)

// The shift transform displaces each channel of a
// [batch, channel, spatial...] tensor along its spatial axes by a
// per-channel, per-axis offset. Offsets live in a [channels, dims]
// matrix. In interpolated mode an offset decomposes into
// floor(offset) plus a fractional remainder in [0, 1) resolved by
// multilinear interpolation; otherwise the offset is rounded and a
// single sample is read.
//
// Two traversal orders exist purely for cache locality and are selected
// by inspecting the input's stride pattern: channel-grouped tensors
// sweep one (n, c, spatial) element per parallel unit, while
// channel-interleaved tensors sweep one (n, spatial) tuple and loop
// over the contiguous channels. Both produce identical results.

// Shift1DForward shifts a [batch, channel, width] tensor along its
// spatial axis. Returns a freshly allocated output with the input's
// shape and layout.
func (cpu *CPUBackend) Shift1DForward(input, weights *tensor.RawTensor, mode PaddingMode, interpolated bool) *tensor.RawTensor {
	return cpu.shiftForward(input, weights, 1, mode, interpolated)
}

// Shift2DForward shifts a [batch, channel, height, width] tensor along
// both spatial axes.
func (cpu *CPUBackend) Shift2DForward(input, weights *tensor.RawTensor, mode PaddingMode, interpolated bool) *tensor.RawTensor {
	return cpu.shiftForward(input, weights, 2, mode, interpolated)
}

// Shift3DForward shifts a [batch, channel, height, width, depth] tensor
// along all three spatial axes.
func (cpu *CPUBackend) Shift3DForward(input, weights *tensor.RawTensor, mode PaddingMode, interpolated bool) *tensor.RawTensor {
	return cpu.shiftForward(input, weights, 3, mode, interpolated)
}

// Shift1DBackward computes the gradients of a 1D shift. outputGrad is
// the upstream gradient (shaped like the forward output), input the
// original forward input. Returns the gradient w.r.t. the input (same
// shape and layout as input) and the gradient w.r.t. the offset matrix
// (shaped like weights).
func (cpu *CPUBackend) Shift1DBackward(outputGrad, weights, input *tensor.RawTensor, mode PaddingMode, interpolated bool) (*tensor.RawTensor, *tensor.RawTensor) {
	return cpu.shiftBackward(outputGrad, weights, input, 1, mode, interpolated)
}

// Shift2DBackward computes the gradients of a 2D shift.
func (cpu *CPUBackend) Shift2DBackward(outputGrad, weights, input *tensor.RawTensor, mode PaddingMode, interpolated bool) (*tensor.RawTensor, *tensor.RawTensor) {
	return cpu.shiftBackward(outputGrad, weights, input, 2, mode, interpolated)
}

// Shift3DBackward computes the gradients of a 3D shift.
func (cpu *CPUBackend) Shift3DBackward(outputGrad, weights, input *tensor.RawTensor, mode PaddingMode, interpolated bool) (*tensor.RawTensor, *tensor.RawTensor) {
	return cpu.shiftBackward(outputGrad, weights, input, 3, mode, interpolated)
}

func (cpu *CPUBackend) shiftForward(input, weights *tensor.RawTensor, dims int, mode PaddingMode, interpolated bool) *tensor.RawTensor {
	checkShiftArgs("shift forward", input, weights, dims)

	output := tensor.NewRawLike(input)
	switch input.DType() {
	case tensor.Float32:
		runShiftForward[float32](input, output, weights, dims, mode, interpolated, cpu.pool)
	case tensor.Float64:
		runShiftForward[float64](input, output, weights, dims, mode, interpolated, cpu.pool)
	default:
		panic(fmt.Sprintf("shift forward: unsupported dtype %s", input.DType()))
	}
	return output
}

func (cpu *CPUBackend) shiftBackward(outputGrad, weights, input *tensor.RawTensor, dims int, mode PaddingMode, interpolated bool) (*tensor.RawTensor, *tensor.RawTensor) {
	checkShiftArgs("shift backward", input, weights, dims)
	if !outputGrad.Shape().Equal(input.Shape()) {
		panic(fmt.Sprintf("shift backward: gradient shape %v != input shape %v",
			outputGrad.Shape(), input.Shape()))
	}
	if outputGrad.DType() != input.DType() {
		panic(fmt.Sprintf("shift backward: gradient dtype %s != input dtype %s",
			outputGrad.DType(), input.DType()))
	}

	inputGrad := tensor.NewRawLike(input)
	weightsGrad, err := tensor.NewRaw(weights.Shape(), weights.DType())
	if err != nil {
		panic(fmt.Sprintf("shift backward: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		runShiftBackward[float32](outputGrad, input, weights, inputGrad, weightsGrad, dims, mode, interpolated, cpu.pool)
	case tensor.Float64:
		runShiftBackward[float64](outputGrad, input, weights, inputGrad, weightsGrad, dims, mode, interpolated, cpu.pool)
	default:
		panic(fmt.Sprintf("shift backward: unsupported dtype %s", input.DType()))
	}
	return inputGrad, weightsGrad
}

// checkShiftArgs enforces the in-memory contract: a
// [batch, channel, spatial...] input with dims spatial axes and a
// matching [channels, dims] offset matrix of the same floating type.
// Violations are caller bugs, not recoverable errors.
func checkShiftArgs(name string, input, weights *tensor.RawTensor, dims int) {
	if len(input.Shape()) != dims+2 {
		panic(fmt.Sprintf("%s: input must be %dD [N,C,spatial...], got %dD",
			name, dims+2, len(input.Shape())))
	}
	ws := weights.Shape()
	if len(ws) != 2 || ws[1] != dims {
		panic(fmt.Sprintf("%s: weights must be [channels, %d], got %v", name, dims, ws))
	}
	if ws[0] != input.Shape()[1] {
		panic(fmt.Sprintf("%s: weights channels %d != input channels %d",
			name, ws[0], input.Shape()[1]))
	}
	if weights.DType() != input.DType() {
		panic(fmt.Sprintf("%s: weights dtype %s != input dtype %s",
			name, weights.DType(), input.DType()))
	}
}

// strides5 carries the per-axis element strides of one tensor, padded
// to three spatial axes. Inactive axes get stride 0 so that their
// (always zero) coordinate contributes nothing to the address.
type strides5 struct {
	n, c, h, w, d int
}

func strides5Of(t *tensor.RawTensor, dims int) strides5 {
	s := t.Strides()
	v := strides5{n: s[0], c: s[1], h: s[2]}
	if dims > 1 {
		v.w = s[3]
	}
	if dims > 2 {
		v.d = s[4]
	}
	return v
}

// sizes5Of returns the axis extents padded to three spatial axes;
// inactive axes report size 1 and are skipped by the samplers and the
// interpolation library.
func sizes5Of(t *tensor.RawTensor, dims int) (sizeN, sizeC, sizeH, sizeW, sizeD int) {
	shape := t.Shape()
	sizeN, sizeC, sizeH = shape[0], shape[1], shape[2]
	sizeW, sizeD = 1, 1
	if dims > 1 {
		sizeW = shape[3]
	}
	if dims > 2 {
		sizeD = shape[4]
	}
	return
}

// decomposeOffsets splits the real-valued offset matrix into integer
// shifts and fractional remainders, padded to three axes per channel.
// Interpolated mode floors; non-interpolated mode rounds half away
// from zero. The fractional remainder is always offset - floor(offset),
// non-negative — the backward pass consumes it in both modes.
func decomposeOffsets[T Float](weights *tensor.RawTensor, dims int, interpolated bool) (shifts []int, fracs []T) {
	w := tensor.Data[T](weights)
	ws := weights.Strides()
	channels := weights.Shape()[0]

	shifts = make([]int, channels*3)
	fracs = make([]T, channels*3)
	for c := 0; c < channels; c++ {
		for s := 0; s < dims; s++ {
			v := float64(w[c*ws[0]+s*ws[1]])
			floor := math.Floor(v)
			if interpolated {
				shifts[c*3+s] = int(floor)
			} else {
				shifts[c*3+s] = int(math.Round(v))
			}
			fracs[c*3+s] = T(v - floor)
		}
	}
	return shifts, fracs
}
