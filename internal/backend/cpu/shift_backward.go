package cpu

import (
	"github.com/guochengqian/sparseshift/internal/parallel"
	"github.com/guochengqian/sparseshift/internal/tensor"
)

// runShiftBackward sweeps the flattened coordinate space once,
// producing both gradients. Each input-gradient element has exactly one
// writer, so it is a plain write. The offset gradient is aliased across
// the whole sweep (every coordinate of a channel lands in the same
// 1-3 slots), so each chunk accumulates into a private partial buffer
// and the partials are merged after the join — an unsynchronized
// read-modify-write on the shared matrix would lose updates.
func runShiftBackward[T Float](outputGrad, input, weights, inputGrad, weightsGrad *tensor.RawTensor, dims int, mode PaddingMode, interpolated bool, cfg parallel.Config) {
	sizeN, sizeC, sizeH, sizeW, sizeD := sizes5Of(input, dims)
	ogS := strides5Of(outputGrad, dims)
	xS := strides5Of(input, dims)
	igS := strides5Of(inputGrad, dims)
	og := tensor.Data[T](outputGrad)
	x := tensor.Data[T](input)
	ig := tensor.Data[T](inputGrad)

	// Integer part floors (interpolated) or rounds (not); the
	// fractional remainder always feeds the offset-gradient path.
	shifts, fracs := decomposeOffsets[T](weights, dims, interpolated)

	if input.IsChannelsLast() {
		total := sizeN * sizeH * sizeW * sizeD
		partials := make([][]T, parallel.NumChunks(total, cfg))
		parallel.ForChunks(total, func(chunk, start, end int) {
			acc := make([]T, sizeC*3)
			for index := start; index < end; index++ {
				k := index % sizeD
				j := (index / sizeD) % sizeW
				i := (index / (sizeD * sizeW)) % sizeH
				n := index / (sizeD * sizeW * sizeH)
				backwardInterleaved(og, x, ig, shifts, fracs, acc, n, i, j, k,
					sizeC, sizeH, sizeW, sizeD, ogS, xS, igS, mode, interpolated)
			}
			partials[chunk] = acc
		}, cfg)
		mergeWeightGrads(weightsGrad, partials, dims)
		return
	}

	total := sizeN * sizeC * sizeH * sizeW * sizeD
	partials := make([][]T, parallel.NumChunks(total, cfg))
	parallel.ForChunks(total, func(chunk, start, end int) {
		acc := make([]T, sizeC*3)
		for index := start; index < end; index++ {
			k := index % sizeD
			j := (index / sizeD) % sizeW
			i := (index / (sizeD * sizeW)) % sizeH
			c := (index / (sizeD * sizeW * sizeH)) % sizeC
			n := index / (sizeD * sizeW * sizeH * sizeC)
			backwardGrouped(og, x, ig, shifts, fracs, acc, n, c, i, j, k,
				sizeH, sizeW, sizeD, ogS, xS, igS, mode, interpolated)
		}
		partials[chunk] = acc
	}, cfg)
	mergeWeightGrads(weightsGrad, partials, dims)
}

// backwardGrouped evaluates one (n, c, i, j, k) coordinate of a
// channel-grouped sweep: writes the input-gradient element and
// accumulates the channel's offset-gradient contributions into acc.
//
// In interpolated mode the input gradient is the upstream gradient
// resampled through the same corner weights the forward pass used; in
// integer mode it is copied from spatial + offset, the reciprocal of
// the forward read.
func backwardGrouped[T Float](og, x, ig []T, shifts []int, fracs []T, acc []T,
	n, c, i, j, k int, sizeH, sizeW, sizeD int,
	ogS, xS, igS strides5, mode PaddingMode, interpolated bool,
) {
	ogNC := og[n*ogS.n+c*ogS.c:]
	xNC := x[n*xS.n+c*xS.c:]
	upstream := ogNC[i*ogS.h+j*ogS.w+k*ogS.d]
	igIdx := n*igS.n + c*igS.c + i*igS.h + j*igS.w + k*igS.d

	s0, s1, s2 := shifts[c*3], shifts[c*3+1], shifts[c*3+2]
	f0, f1, f2 := fracs[c*3], fracs[c*3+1], fracs[c*3+2]

	var zero T
	var corners [8]T
	if interpolated {
		shiftedCorners(i-s0, sizeH, ogS.h, j-s1, sizeW, ogS.w,
			k-s2, sizeD, ogS.d, 0, 0, ogNC, mode, &corners)
		ig[igIdx] = interpolate(&corners, f0, f1, f2, sizeW, sizeD)
	} else {
		ig[igIdx] = shiftedValue(i+s0, sizeH, ogS.h, j+s1, sizeW, ogS.w,
			k+s2, sizeD, ogS.d, 0, 0, ogNC, zero, mode)
	}

	shiftedCorners(i-s0, sizeH, xS.h, j-s1, sizeW, xS.w,
		k-s2, sizeD, xS.d, 0, 0, xNC, mode, &corners)
	var g [3]T
	interpGradients(&corners, f0, f1, f2, sizeH, sizeW, sizeD, &g)
	acc[c*3] += upstream * g[0]
	if sizeW > 1 {
		acc[c*3+1] += upstream * g[1]
	}
	if sizeD > 1 {
		acc[c*3+2] += upstream * g[2]
	}
}

// backwardInterleaved evaluates one (n, i, j, k) tuple of a
// channel-interleaved sweep, looping over the contiguous channels.
func backwardInterleaved[T Float](og, x, ig []T, shifts []int, fracs []T, acc []T,
	n, i, j, k int, sizeC, sizeH, sizeW, sizeD int,
	ogS, xS, igS strides5, mode PaddingMode, interpolated bool,
) {
	ogN := og[n*ogS.n:]
	xN := x[n*xS.n:]
	upstreamBase := i*ogS.h + j*ogS.w + k*ogS.d
	igBase := n*igS.n + i*igS.h + j*igS.w + k*igS.d

	var zero T
	var corners [8]T
	var g [3]T
	for c := 0; c < sizeC; c++ {
		s0, s1, s2 := shifts[c*3], shifts[c*3+1], shifts[c*3+2]
		f0, f1, f2 := fracs[c*3], fracs[c*3+1], fracs[c*3+2]

		if interpolated {
			shiftedCorners(i-s0, sizeH, ogS.h, j-s1, sizeW, ogS.w,
				k-s2, sizeD, ogS.d, c, ogS.c, ogN, mode, &corners)
			ig[igBase+c*igS.c] = interpolate(&corners, f0, f1, f2, sizeW, sizeD)
		} else {
			ig[igBase+c*igS.c] = shiftedValue(i+s0, sizeH, ogS.h, j+s1, sizeW, ogS.w,
				k+s2, sizeD, ogS.d, c, ogS.c, ogN, zero, mode)
		}

		shiftedCorners(i-s0, sizeH, xS.h, j-s1, sizeW, xS.w,
			k-s2, sizeD, xS.d, c, xS.c, xN, mode, &corners)
		interpGradients(&corners, f0, f1, f2, sizeH, sizeW, sizeD, &g)

		upstream := ogN[upstreamBase+c*ogS.c]
		acc[c*3] += upstream * g[0]
		if sizeW > 1 {
			acc[c*3+1] += upstream * g[1]
		}
		if sizeD > 1 {
			acc[c*3+2] += upstream * g[2]
		}
	}
}

// mergeWeightGrads folds the per-chunk partial accumulators into the
// [channels, dims] offset-gradient matrix. Addition is associative, so
// chunk order does not matter.
func mergeWeightGrads[T Float](weightsGrad *tensor.RawTensor, partials [][]T, dims int) {
	wg := tensor.Data[T](weightsGrad)
	ws := weightsGrad.Strides()
	channels := weightsGrad.Shape()[0]

	for _, acc := range partials {
		if acc == nil {
			continue
		}
		for c := 0; c < channels; c++ {
			for s := 0; s < dims; s++ {
				wg[c*ws[0]+s*ws[1]] += acc[c*3+s]
			}
		}
	}
}
