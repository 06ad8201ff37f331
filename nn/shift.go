// Package nn provides the learnable shift layer modules: zero-FLOP
// replacements for depth-wise convolution where each channel learns a
// per-axis displacement instead of a kernel.
package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/guochengqian/sparseshift/internal/backend/cpu"
	"github.com/guochengqian/sparseshift/internal/tensor"
)

// Shift is a learnable per-channel shift layer over 1, 2 or 3 spatial
// axes.
//
// Input shape:  [batch, channels, spatial...] (channel-grouped or
// channel-interleaved memory layout, detected automatically).
// Weight shape: [channels, dims], one real-valued offset per channel
// and spatial axis.
//
// With active=false the forward pass rounds each offset and moves whole
// elements; with active=true sub-element offsets are resolved by
// multilinear interpolation, which also makes the offsets themselves
// differentiable.
type Shift struct {
	dims         int
	channels     int
	padding      cpu.PaddingMode
	sparsityTerm float64
	active       bool

	weight  *tensor.RawTensor // [channels, dims], float32
	backend *cpu.CPUBackend
}

// NewShift1D creates a shift layer over one spatial axis.
//
// Parameters:
//   - channels: number of channels in the input
//   - padding: one of "zeros", "border", "periodic", "reflect", "symmetric"
//   - initShift: offsets initialize uniformly in [-initShift, initShift]
//   - sparsityTerm: strength of the L1 penalty on the offsets (0 disables)
//   - active: resolve fractional offsets by interpolation on forward
func NewShift1D(channels int, padding string, initShift, sparsityTerm float64, active bool, backend *cpu.CPUBackend) *Shift {
	return newShift(1, channels, padding, initShift, sparsityTerm, active, backend)
}

// NewShift2D creates a shift layer over two spatial axes.
func NewShift2D(channels int, padding string, initShift, sparsityTerm float64, active bool, backend *cpu.CPUBackend) *Shift {
	return newShift(2, channels, padding, initShift, sparsityTerm, active, backend)
}

// NewShift3D creates a shift layer over three spatial axes.
func NewShift3D(channels int, padding string, initShift, sparsityTerm float64, active bool, backend *cpu.CPUBackend) *Shift {
	return newShift(3, channels, padding, initShift, sparsityTerm, active, backend)
}

func newShift(dims, channels int, padding string, initShift, sparsityTerm float64, active bool, backend *cpu.CPUBackend) *Shift {
	if channels <= 0 {
		panic(fmt.Sprintf("shift: invalid channels %d", channels))
	}
	mode, err := cpu.PaddingByName(padding)
	if err != nil {
		panic(fmt.Sprintf("shift: %v", err))
	}

	weight, err := tensor.NewRaw(tensor.Shape{channels, dims}, tensor.Float32)
	if err != nil {
		panic(fmt.Sprintf("shift: %v", err))
	}

	s := &Shift{
		dims:         dims,
		channels:     channels,
		padding:      mode,
		sparsityTerm: sparsityTerm,
		active:       active,
		weight:       weight,
		backend:      backend,
	}
	s.ResetParameters(initShift)
	return s
}

// ResetParameters reinitializes the offsets uniformly in
// [-|initShift|, |initShift|].
func (s *Shift) ResetParameters(initShift float64) {
	bound := math.Abs(initShift)
	w := s.weight.AsFloat32()
	if bound == 0 {
		for i := range w {
			w[i] = 0
		}
		return
	}
	u := distuv.Uniform{Min: -bound, Max: bound}
	for i := range w {
		w[i] = float32(u.Rand())
	}
}

// Forward applies the shift. Half-precision inputs are converted to
// float32 for the sweep and converted back on output.
func (s *Shift) Forward(input *tensor.RawTensor) *tensor.RawTensor {
	s.checkInput(input)

	half := input.DType() == tensor.Float16
	if half {
		input = tensor.Cast(input, tensor.Float32)
	}

	var out *tensor.RawTensor
	switch s.dims {
	case 1:
		out = s.backend.Shift1DForward(input, s.weight, s.padding, s.active)
	case 2:
		out = s.backend.Shift2DForward(input, s.weight, s.padding, s.active)
	default:
		out = s.backend.Shift3DForward(input, s.weight, s.padding, s.active)
	}

	if half {
		out = tensor.Cast(out, tensor.Float16)
	}
	return out
}

// Backward computes the gradients w.r.t. the layer input and the
// offsets, given the upstream gradient and the original forward input.
func (s *Shift) Backward(outputGrad, input *tensor.RawTensor) (inputGrad, weightGrad *tensor.RawTensor) {
	s.checkInput(input)
	switch s.dims {
	case 1:
		return s.backend.Shift1DBackward(outputGrad, s.weight, input, s.padding, s.active)
	case 2:
		return s.backend.Shift2DBackward(outputGrad, s.weight, input, s.padding, s.active)
	default:
		return s.backend.Shift3DBackward(outputGrad, s.weight, input, s.padding, s.active)
	}
}

// WeightLoss returns the sparsity penalty sparsityTerm * sum(|weight|),
// or 0 when the term is disabled.
func (s *Shift) WeightLoss() float64 {
	if s.sparsityTerm == 0 {
		return 0
	}
	var sum float64
	for _, w := range s.weight.AsFloat32() {
		sum += math.Abs(float64(w))
	}
	return s.sparsityTerm * sum
}

// Weight returns the [channels, dims] offset matrix.
func (s *Shift) Weight() *tensor.RawTensor {
	return s.weight
}

// Channels returns the number of channels.
func (s *Shift) Channels() int {
	return s.channels
}

// Dims returns the number of spatial axes.
func (s *Shift) Dims() int {
	return s.dims
}

// String returns a string representation of the layer.
func (s *Shift) String() string {
	return fmt.Sprintf("Shift%dD(channels=%d, padding=%s, active=%v, sparsity_term=%g)",
		s.dims, s.channels, s.padding, s.active, s.sparsityTerm)
}

func (s *Shift) checkInput(input *tensor.RawTensor) {
	if len(input.Shape()) != s.dims+2 {
		panic(fmt.Sprintf("shift: expected %dD input [N,C,spatial...], got %dD",
			s.dims+2, len(input.Shape())))
	}
	if input.Shape()[1] != s.channels {
		panic(fmt.Sprintf("shift: input channels %d != expected %d",
			input.Shape()[1], s.channels))
	}
}
