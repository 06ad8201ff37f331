package cpu

import (
	"fmt"

	"github.com/guochengqian/sparseshift/internal/parallel"
	"github.com/guochengqian/sparseshift/internal/tensor"
)

// Quantized shift: integer-only forward for fixed-point inference.
// Offsets arrive as an Int64 [channels, dims] matrix already biased by
// weightsZeroPoint; out-of-range reads substitute the caller-supplied
// zeroPoint rather than algebraic zero. There is no fractional
// component, no interpolation and no backward — quantization is a
// forward-only inference path.

// ShiftQuantized1DForward shifts a quantized [batch, channel, width]
// tensor by whole-element offsets.
func (cpu *CPUBackend) ShiftQuantized1DForward(input, weights *tensor.RawTensor, mode PaddingMode, zeroPoint, weightsZeroPoint int64) *tensor.RawTensor {
	return cpu.shiftQuantizedForward(input, weights, 1, mode, zeroPoint, weightsZeroPoint)
}

// ShiftQuantized2DForward shifts a quantized
// [batch, channel, height, width] tensor by whole-element offsets.
func (cpu *CPUBackend) ShiftQuantized2DForward(input, weights *tensor.RawTensor, mode PaddingMode, zeroPoint, weightsZeroPoint int64) *tensor.RawTensor {
	return cpu.shiftQuantizedForward(input, weights, 2, mode, zeroPoint, weightsZeroPoint)
}

// ShiftQuantized3DForward shifts a quantized
// [batch, channel, height, width, depth] tensor by whole-element
// offsets.
func (cpu *CPUBackend) ShiftQuantized3DForward(input, weights *tensor.RawTensor, mode PaddingMode, zeroPoint, weightsZeroPoint int64) *tensor.RawTensor {
	return cpu.shiftQuantizedForward(input, weights, 3, mode, zeroPoint, weightsZeroPoint)
}

func (cpu *CPUBackend) shiftQuantizedForward(input, weights *tensor.RawTensor, dims int, mode PaddingMode, zeroPoint, weightsZeroPoint int64) *tensor.RawTensor {
	if len(input.Shape()) != dims+2 {
		panic(fmt.Sprintf("quantized shift: input must be %dD [N,C,spatial...], got %dD",
			dims+2, len(input.Shape())))
	}
	ws := weights.Shape()
	if len(ws) != 2 || ws[1] != dims {
		panic(fmt.Sprintf("quantized shift: weights must be [channels, %d], got %v", dims, ws))
	}
	if ws[0] != input.Shape()[1] {
		panic(fmt.Sprintf("quantized shift: weights channels %d != input channels %d",
			ws[0], input.Shape()[1]))
	}
	if weights.DType() != tensor.Int64 {
		panic(fmt.Sprintf("quantized shift: weights must be int64, got %s", weights.DType()))
	}

	shifts := quantizedShifts(weights, dims, weightsZeroPoint)
	output := tensor.NewRawLike(input)
	switch input.DType() {
	case tensor.Uint8:
		runShiftQuantized(input, output, shifts, dims, mode, uint8(zeroPoint), cpu.pool)
	case tensor.Int32:
		runShiftQuantized(input, output, shifts, dims, mode, int32(zeroPoint), cpu.pool)
	default:
		panic(fmt.Sprintf("quantized shift: unsupported dtype %s", input.DType()))
	}
	return output
}

// quantizedShifts unbiases the integer offset matrix, padded to three
// axes per channel.
func quantizedShifts(weights *tensor.RawTensor, dims int, weightsZeroPoint int64) []int {
	w := weights.AsInt64()
	ws := weights.Strides()
	channels := weights.Shape()[0]

	shifts := make([]int, channels*3)
	for c := 0; c < channels; c++ {
		for s := 0; s < dims; s++ {
			shifts[c*3+s] = int(w[c*ws[0]+s*ws[1]] - weightsZeroPoint)
		}
	}
	return shifts
}

func runShiftQuantized[T Scalar](input, output *tensor.RawTensor, shifts []int, dims int, mode PaddingMode, zeroPoint T, cfg parallel.Config) {
	sizeN, sizeC, sizeH, sizeW, sizeD := sizes5Of(input, dims)
	inS := strides5Of(input, dims)
	outS := strides5Of(output, dims)
	src := tensor.Data[T](input)
	dst := tensor.Data[T](output)

	if input.IsChannelsLast() {
		parallel.For(sizeN*sizeH*sizeW*sizeD, func(index int) {
			k := index % sizeD
			j := (index / sizeD) % sizeW
			i := (index / (sizeD * sizeW)) % sizeH
			n := index / (sizeD * sizeW * sizeH)

			srcN := src[n*inS.n:]
			outBase := n*outS.n + i*outS.h + j*outS.w + k*outS.d
			for c := 0; c < sizeC; c++ {
				s0, s1, s2 := shifts[c*3], shifts[c*3+1], shifts[c*3+2]
				dst[outBase+c*outS.c] = shiftedValue(i-s0, sizeH, inS.h, j-s1, sizeW, inS.w,
					k-s2, sizeD, inS.d, c, inS.c, srcN, zeroPoint, mode)
			}
		}, cfg)
		return
	}

	parallel.For(sizeN*sizeC*sizeH*sizeW*sizeD, func(index int) {
		k := index % sizeD
		j := (index / sizeD) % sizeW
		i := (index / (sizeD * sizeW)) % sizeH
		c := (index / (sizeD * sizeW * sizeH)) % sizeC
		n := index / (sizeD * sizeW * sizeH * sizeC)

		srcNC := src[n*inS.n+c*inS.c:]
		s0, s1, s2 := shifts[c*3], shifts[c*3+1], shifts[c*3+2]
		outIdx := n*outS.n + c*outS.c + i*outS.h + j*outS.w + k*outS.d
		dst[outIdx] = shiftedValue(i-s0, sizeH, inS.h, j-s1, sizeW, inS.w,
			k-s2, sizeD, inS.d, 0, 0, srcNC, zeroPoint, mode)
	}, cfg)
}
