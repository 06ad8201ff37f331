package cpu

import (
	"github.com/guochengqian/sparseshift/internal/parallel"
	"github.com/guochengqian/sparseshift/internal/tensor"
)

// runShiftForward sweeps the flattened output coordinate space and
// writes one shifted value per element. The traversal order follows
// the input's memory layout; both orders are numerically identical.
func runShiftForward[T Float](input, output, weights *tensor.RawTensor, dims int, mode PaddingMode, interpolated bool, cfg parallel.Config) {
	sizeN, sizeC, sizeH, sizeW, sizeD := sizes5Of(input, dims)
	inS := strides5Of(input, dims)
	outS := strides5Of(output, dims)
	src := tensor.Data[T](input)
	dst := tensor.Data[T](output)
	shifts, fracs := decomposeOffsets[T](weights, dims, interpolated)

	if input.IsChannelsLast() {
		parallel.For(sizeN*sizeH*sizeW*sizeD, func(index int) {
			k := index % sizeD
			j := (index / sizeD) % sizeW
			i := (index / (sizeD * sizeW)) % sizeH
			n := index / (sizeD * sizeW * sizeH)
			forwardInterleaved(src, dst, shifts, fracs, n, i, j, k,
				sizeC, sizeH, sizeW, sizeD, inS, outS, mode, interpolated)
		}, cfg)
		return
	}

	parallel.For(sizeN*sizeC*sizeH*sizeW*sizeD, func(index int) {
		k := index % sizeD
		j := (index / sizeD) % sizeW
		i := (index / (sizeD * sizeW)) % sizeH
		c := (index / (sizeD * sizeW * sizeH)) % sizeC
		n := index / (sizeD * sizeW * sizeH * sizeC)
		forwardGrouped(src, dst, shifts, fracs, n, c, i, j, k,
			sizeH, sizeW, sizeD, inS, outS, mode, interpolated)
	}, cfg)
}

// forwardGrouped evaluates one (n, c, i, j, k) output element of a
// channel-grouped tensor.
func forwardGrouped[T Float](src, dst []T, shifts []int, fracs []T,
	n, c, i, j, k int, sizeH, sizeW, sizeD int,
	inS, outS strides5, mode PaddingMode, interpolated bool,
) {
	srcNC := src[n*inS.n+c*inS.c:]
	outIdx := n*outS.n + c*outS.c + i*outS.h + j*outS.w + k*outS.d
	s0, s1, s2 := shifts[c*3], shifts[c*3+1], shifts[c*3+2]

	var val, zero T
	if interpolated {
		var corners [8]T
		shiftedCorners(i-s0, sizeH, inS.h, j-s1, sizeW, inS.w,
			k-s2, sizeD, inS.d, 0, 0, srcNC, mode, &corners)
		val = interpolate(&corners, fracs[c*3], fracs[c*3+1], fracs[c*3+2], sizeW, sizeD)
	} else {
		val = shiftedValue(i-s0, sizeH, inS.h, j-s1, sizeW, inS.w,
			k-s2, sizeD, inS.d, 0, 0, srcNC, zero, mode)
	}
	dst[outIdx] = val
}

// forwardInterleaved evaluates one (n, i, j, k) tuple of a
// channel-interleaved tensor, looping over the contiguous channels.
// Offsets are reloaded once per channel.
func forwardInterleaved[T Float](src, dst []T, shifts []int, fracs []T,
	n, i, j, k int, sizeC, sizeH, sizeW, sizeD int,
	inS, outS strides5, mode PaddingMode, interpolated bool,
) {
	srcN := src[n*inS.n:]
	outBase := n*outS.n + i*outS.h + j*outS.w + k*outS.d

	var zero T
	for c := 0; c < sizeC; c++ {
		s0, s1, s2 := shifts[c*3], shifts[c*3+1], shifts[c*3+2]
		var val T
		if interpolated {
			var corners [8]T
			shiftedCorners(i-s0, sizeH, inS.h, j-s1, sizeW, inS.w,
				k-s2, sizeD, inS.d, c, inS.c, srcN, mode, &corners)
			val = interpolate(&corners, fracs[c*3], fracs[c*3+1], fracs[c*3+2], sizeW, sizeD)
		} else {
			val = shiftedValue(i-s0, sizeH, inS.h, j-s1, sizeW, inS.w,
				k-s2, sizeD, inS.d, c, inS.c, srcN, zero, mode)
		}
		dst[outBase+c*outS.c] = val
	}
}
