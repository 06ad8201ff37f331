package cpu

// Float is the element-type constraint for the differentiable kernels.
type Float interface {
	~float32 | ~float64
}

// Corner ordering for multilinear interpolation, by binary pattern of
// "base or base+1" per axis:
//
//	v[0] = (i,   j,   k  )   v[4] = (i,   j,   k+1)
//	v[1] = (i+1, j,   k  )   v[5] = (i+1, j,   k+1)
//	v[2] = (i,   j+1, k  )   v[6] = (i,   j+1, k+1)
//	v[3] = (i+1, j+1, k  )   v[7] = (i+1, j+1, k+1)
//
// fh, fw, fd are the fractional offsets along the first, second and
// third spatial axis.

func interp1D[T Float](v0, v1, fh T) T {
	return v0*(1-fh) + v1*fh
}

func interp1DDx[T Float](v0, v1 T) T {
	return v1 - v0
}

func interp2D[T Float](v0, v1, v2, v3, fh, fw T) T {
	return interp1D(interp1D(v0, v1, fh), interp1D(v2, v3, fh), fw)
}

// interp2DDx is the partial derivative of interp2D w.r.t. fh.
func interp2DDx[T Float](v0, v1, v2, v3, fw T) T {
	return interp1D(v1-v0, v3-v2, fw)
}

// interp2DDy is the partial derivative of interp2D w.r.t. fw.
func interp2DDy[T Float](v0, v1, v2, v3, fh T) T {
	return interp1D(v2-v0, v3-v1, fh)
}

func interp3D[T Float](v0, v1, v2, v3, v4, v5, v6, v7, fh, fw, fd T) T {
	return interp1D(interp2D(v0, v1, v2, v3, fh, fw), interp2D(v4, v5, v6, v7, fh, fw), fd)
}

// interp3DDx is the partial derivative of interp3D w.r.t. fh.
func interp3DDx[T Float](v0, v1, v2, v3, v4, v5, v6, v7, fw, fd T) T {
	return interp1D(interp1D(v1-v0, v3-v2, fw), interp1D(v5-v4, v7-v6, fw), fd)
}

// interp3DDy is the partial derivative of interp3D w.r.t. fw.
func interp3DDy[T Float](v0, v1, v2, v3, v4, v5, v6, v7, fh, fd T) T {
	return interp1D(interp1D(v2-v0, v3-v1, fh), interp1D(v6-v4, v7-v5, fh), fd)
}

// interp3DDz is the partial derivative of interp3D w.r.t. fd.
func interp3DDz[T Float](v0, v1, v2, v3, v4, v5, v6, v7, fh, fw T) T {
	return interp2D(v4-v0, v5-v1, v6-v2, v7-v3, fh, fw)
}

// interpolate blends the corner set for the active dimensionality.
// Axes of size 1 are inactive: sizeD > 1 selects trilinear, else
// sizeW > 1 bilinear, else linear.
func interpolate[T Float](v *[8]T, fh, fw, fd T, sizeW, sizeD int) T {
	if sizeD > 1 {
		return interp3D(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], fh, fw, fd)
	}
	if sizeW > 1 {
		return interp2D(v[0], v[1], v[2], v[3], fh, fw)
	}
	return interp1D(v[0], v[1], fh)
}

// interpGradients writes the partial derivatives of the blended value
// w.r.t. each active axis's fractional offset into grad. Inactive axes
// (size 1) are skipped; a fully degenerate spatial extent leaves grad
// untouched rather than producing 0/0 derivatives.
func interpGradients[T Float](v *[8]T, fh, fw, fd T, sizeH, sizeW, sizeD int, grad *[3]T) {
	switch {
	case sizeD > 1:
		grad[0] = interp3DDx(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], fw, fd)
		grad[1] = interp3DDy(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], fh, fd)
		grad[2] = interp3DDz(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], fh, fw)
	case sizeW > 1:
		grad[0] = interp2DDx(v[0], v[1], v[2], v[3], fw)
		grad[1] = interp2DDy(v[0], v[1], v[2], v[3], fh)
	case sizeH > 1:
		grad[0] = interp1DDx(v[0], v[1])
	}
}
