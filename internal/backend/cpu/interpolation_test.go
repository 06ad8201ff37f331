package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterp1D_Identities(t *testing.T) {
	v0, v1 := 3.0, 7.0

	// Integer-valued fractions select corners exactly.
	assert.Equal(t, v0, interp1D(v0, v1, 0.0))
	assert.Equal(t, v1, interp1D(v0, v1, 1.0))

	// Midpoint is the arithmetic mean.
	assert.Equal(t, 5.0, interp1D(v0, v1, 0.5))

	assert.Equal(t, 4.0, interp1DDx(v0, v1))
}

func TestInterp2D_CornerSelection(t *testing.T) {
	// Corner order: v0=(i,j), v1=(i+1,j), v2=(i,j+1), v3=(i+1,j+1).
	v0, v1, v2, v3 := 1.0, 2.0, 3.0, 4.0

	assert.Equal(t, v0, interp2D(v0, v1, v2, v3, 0, 0))
	assert.Equal(t, v1, interp2D(v0, v1, v2, v3, 1, 0))
	assert.Equal(t, v2, interp2D(v0, v1, v2, v3, 0, 1))
	assert.Equal(t, v3, interp2D(v0, v1, v2, v3, 1, 1))
}

func TestInterp3D_CornerSelection(t *testing.T) {
	v := [8]float64{1, 2, 3, 4, 5, 6, 7, 8}
	corners := []struct {
		fh, fw, fd float64
		want       float64
	}{
		{0, 0, 0, v[0]}, {1, 0, 0, v[1]}, {0, 1, 0, v[2]}, {1, 1, 0, v[3]},
		{0, 0, 1, v[4]}, {1, 0, 1, v[5]}, {0, 1, 1, v[6]}, {1, 1, 1, v[7]},
	}
	for _, c := range corners {
		got := interp3D(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], c.fh, c.fw, c.fd)
		assert.Equal(t, c.want, got, "fh=%v fw=%v fd=%v", c.fh, c.fw, c.fd)
	}
}

func TestInterp2D_DerivativesMatchFiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const eps = 1e-6
	const tol = 1e-6

	for trial := 0; trial < 50; trial++ {
		v0, v1, v2, v3 := rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()
		fh, fw := rng.Float64(), rng.Float64()

		dx := interp2DDx(v0, v1, v2, v3, fw)
		numDx := (interp2D(v0, v1, v2, v3, fh+eps, fw) - interp2D(v0, v1, v2, v3, fh-eps, fw)) / (2 * eps)
		if math.Abs(dx-numDx) > tol {
			t.Fatalf("d/dfh = %v, finite difference %v", dx, numDx)
		}

		dy := interp2DDy(v0, v1, v2, v3, fh)
		numDy := (interp2D(v0, v1, v2, v3, fh, fw+eps) - interp2D(v0, v1, v2, v3, fh, fw-eps)) / (2 * eps)
		if math.Abs(dy-numDy) > tol {
			t.Fatalf("d/dfw = %v, finite difference %v", dy, numDy)
		}
	}
}

func TestInterp3D_DerivativesMatchFiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const eps = 1e-6
	const tol = 1e-6

	for trial := 0; trial < 50; trial++ {
		var v [8]float64
		for i := range v {
			v[i] = rng.Float64()
		}
		fh, fw, fd := rng.Float64(), rng.Float64(), rng.Float64()

		at := func(h, w, d float64) float64 {
			return interp3D(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], h, w, d)
		}

		dx := interp3DDx(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], fw, fd)
		if num := (at(fh+eps, fw, fd) - at(fh-eps, fw, fd)) / (2 * eps); math.Abs(dx-num) > tol {
			t.Fatalf("d/dfh = %v, finite difference %v", dx, num)
		}
		dy := interp3DDy(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], fh, fd)
		if num := (at(fh, fw+eps, fd) - at(fh, fw-eps, fd)) / (2 * eps); math.Abs(dy-num) > tol {
			t.Fatalf("d/dfw = %v, finite difference %v", dy, num)
		}
		dz := interp3DDz(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], fh, fw)
		if num := (at(fh, fw, fd+eps) - at(fh, fw, fd-eps)) / (2 * eps); math.Abs(dz-num) > tol {
			t.Fatalf("d/dfd = %v, finite difference %v", dz, num)
		}
	}
}

func TestInterpGradients_InactiveAxesSkipped(t *testing.T) {
	v := [8]float64{1, 5}
	var g [3]float64

	// 1D: only the first slot is written.
	interpGradients(&v, 0.5, 0, 0, 4, 1, 1, &g)
	assert.Equal(t, [3]float64{4, 0, 0}, g)

	// Fully degenerate extent: no slot is written.
	g = [3]float64{}
	interpGradients(&v, 0, 0, 0, 1, 1, 1, &g)
	assert.Equal(t, [3]float64{}, g)
}
