package cpu

// Scalar is the element-type constraint shared by the differentiable
// and quantized kernels.
type Scalar interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// shiftedValue resolves one spatial read position through the boundary
// resolver and returns the addressed element, or zeroPoint when any
// axis resolves out of bounds under PaddingZeros. The array slice is
// the (batch[, channel]) base of the tensor; c/strideC address the
// channel for interleaved traversal and are 0 for grouped traversal.
func shiftedValue[T Scalar](
	iShifted, sizeH, strideH int,
	jShifted, sizeW, strideW int,
	kShifted, sizeD, strideD int,
	c, strideC int,
	array []T, zeroPoint T, mode PaddingMode,
) T {
	ti, okI := resolveIndex(iShifted, sizeH, mode)
	tj, okJ := resolveIndex(jShifted, sizeW, mode)
	tk, okK := resolveIndex(kShifted, sizeD, mode)
	if okI && okJ && okK {
		return array[ti*strideH+tj*strideW+tk*strideD+c*strideC]
	}
	return zeroPoint
}

// shiftedCorners gathers the corner set for multilinear interpolation
// centered at the shifted base position: base and base+1 along every
// active axis, each corner independently resolved through the boundary
// resolver. Axes of size 1 are inactive and their corners stay at the
// zero value the caller initialized.
func shiftedCorners[T Float](
	iShifted, sizeH, strideH int,
	jShifted, sizeW, strideW int,
	kShifted, sizeD, strideD int,
	c, strideC int,
	array []T, mode PaddingMode, out *[8]T,
) {
	var zero T
	out[0] = shiftedValue(iShifted, sizeH, strideH, jShifted, sizeW, strideW,
		kShifted, sizeD, strideD, c, strideC, array, zero, mode)
	out[1] = shiftedValue(iShifted+1, sizeH, strideH, jShifted, sizeW, strideW,
		kShifted, sizeD, strideD, c, strideC, array, zero, mode)
	if sizeW > 1 {
		out[2] = shiftedValue(iShifted, sizeH, strideH, jShifted+1, sizeW, strideW,
			kShifted, sizeD, strideD, c, strideC, array, zero, mode)
		out[3] = shiftedValue(iShifted+1, sizeH, strideH, jShifted+1, sizeW, strideW,
			kShifted, sizeD, strideD, c, strideC, array, zero, mode)
	}
	if sizeD > 1 {
		out[4] = shiftedValue(iShifted, sizeH, strideH, jShifted, sizeW, strideW,
			kShifted+1, sizeD, strideD, c, strideC, array, zero, mode)
		out[5] = shiftedValue(iShifted+1, sizeH, strideH, jShifted, sizeW, strideW,
			kShifted+1, sizeD, strideD, c, strideC, array, zero, mode)
		out[6] = shiftedValue(iShifted, sizeH, strideH, jShifted+1, sizeW, strideW,
			kShifted+1, sizeD, strideD, c, strideC, array, zero, mode)
		out[7] = shiftedValue(iShifted+1, sizeH, strideH, jShifted+1, sizeW, strideW,
			kShifted+1, sizeD, strideD, c, strideC, array, zero, mode)
	}
}
