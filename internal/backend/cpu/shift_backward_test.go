package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/guochengqian/sparseshift/internal/parallel"
	"github.com/guochengqian/sparseshift/internal/tensor"
)

// fractionalOffsets draws offsets whose fractional parts stay well away
// from integer boundaries, so a finite-difference probe never crosses a
// floor cell.
func fractionalOffsets(t *testing.T, channels, dims int, rng *rand.Rand) *tensor.RawTensor {
	t.Helper()
	data := make([]float64, channels*dims)
	for i := range data {
		whole := float64(rng.Intn(5) - 2)
		data[i] = whole + 0.2 + 0.6*rng.Float64()
	}
	return f64Tensor(t, data, tensor.Shape{channels, dims})
}

func TestShiftBackward_WeightGradMatchesFiniteDifferences(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(21))

	shapes := map[int]tensor.Shape{
		1: {2, 3, 6},
		2: {2, 3, 4, 5},
		3: {1, 2, 3, 4, 3},
	}
	const eps = 1e-6
	const tol = 1e-5

	for dims, shape := range shapes {
		for _, mode := range allPaddings {
			input := randF64Tensor(t, shape, rng)
			outputGrad := randF64Tensor(t, shape, rng)
			weights := fractionalOffsets(t, shape[1], dims, rng)

			_, weightsGrad := backwardByDims(backend, dims, outputGrad, weights, input, mode, true)
			wg := weightsGrad.AsFloat64()

			// loss = <outputGrad, forward(input, weights)>
			loss := func() float64 {
				out := forwardByDims(backend, dims, input, weights, mode, true)
				return floats.Dot(outputGrad.AsFloat64(), out.AsFloat64())
			}

			w := weights.AsFloat64()
			for i := range w {
				orig := w[i]
				w[i] = orig + eps
				plus := loss()
				w[i] = orig - eps
				minus := loss()
				w[i] = orig

				numeric := (plus - minus) / (2 * eps)
				if math.Abs(wg[i]-numeric) > tol*math.Max(1, math.Abs(numeric)) {
					t.Errorf("dims=%d mode=%s: weight grad [%d] = %v, finite difference %v",
						dims, mode, i, wg[i], numeric)
				}
			}
		}
	}
}

func TestShiftBackward_InterpolatedInputGradResamplesUpstream(t *testing.T) {
	// In interpolated mode the input gradient is the upstream gradient
	// pushed through the same shift the forward pass applied.
	backend := New()
	rng := rand.New(rand.NewSource(22))

	input := randF64Tensor(t, tensor.Shape{2, 3, 4, 5}, rng)
	outputGrad := randF64Tensor(t, tensor.Shape{2, 3, 4, 5}, rng)
	weights := fractionalOffsets(t, 3, 2, rng)

	for _, mode := range allPaddings {
		inputGrad, _ := backend.Shift2DBackward(outputGrad, weights, input, mode, true)
		resampled := backend.Shift2DForward(outputGrad, weights, mode, true)
		assert.Equal(t, resampled.AsFloat64(), inputGrad.AsFloat64(), "mode=%s", mode)
	}
}

func TestShiftBackward_IntegerInputGradReversesDirection(t *testing.T) {
	// Integer mode scatters: the gradient of out[i] = x[i-s] lands at
	// ig[i] = og[i+s].
	backend := New()

	input := f64Tensor(t, []float64{10, 20, 30}, tensor.Shape{1, 1, 3})
	outputGrad := f64Tensor(t, []float64{2, 5, 7}, tensor.Shape{1, 1, 3})
	weights := f64Tensor(t, []float64{1}, tensor.Shape{1, 1})

	inputGrad, _ := backend.Shift1DBackward(outputGrad, weights, input, PaddingZeros, false)
	assert.Equal(t, []float64{5, 7, 0}, inputGrad.AsFloat64())
}

func TestShiftBackward_IntegerPeriodicAdjoint(t *testing.T) {
	// With a whole-element shift under periodic boundaries the transform
	// is a permutation, so <forward(x), g> == <x, backward_input(g)>.
	backend := New()
	rng := rand.New(rand.NewSource(23))

	input := randF64Tensor(t, tensor.Shape{2, 3, 4, 5}, rng)
	outputGrad := randF64Tensor(t, tensor.Shape{2, 3, 4, 5}, rng)
	weights := f64Tensor(t, []float64{1, -2, 0, 3, -1, 2}, tensor.Shape{3, 2})

	out := backend.Shift2DForward(input, weights, PaddingPeriodic, false)
	inputGrad, _ := backend.Shift2DBackward(outputGrad, weights, input, PaddingPeriodic, false)

	lhs := floats.Dot(out.AsFloat64(), outputGrad.AsFloat64())
	rhs := floats.Dot(input.AsFloat64(), inputGrad.AsFloat64())
	assert.InDelta(t, lhs, rhs, 1e-9)
}

func TestShiftBackward_LayoutEquivalence(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(24))

	input := randF64Tensor(t, tensor.Shape{2, 4, 5, 6}, rng)
	outputGrad := randF64Tensor(t, tensor.Shape{2, 4, 5, 6}, rng)
	weights := fractionalOffsets(t, 4, 2, rng)

	inputCL := tensor.ToChannelsLast(input)
	outputGradCL := tensor.ToChannelsLast(outputGrad)

	for _, mode := range allPaddings {
		for _, interpolated := range []bool{false, true} {
			ig, wg := backend.Shift2DBackward(outputGrad, weights, input, mode, interpolated)
			igCL, wgCL := backend.Shift2DBackward(outputGradCL, weights, inputCL, mode, interpolated)

			assert.True(t, igCL.IsChannelsLast())
			assert.Equal(t, ig.AsFloat64(), tensor.ToContiguous(igCL).AsFloat64(),
				"mode=%s interpolated=%v", mode, interpolated)

			// Accumulation order differs between the sweeps.
			a, b := wg.AsFloat64(), wgCL.AsFloat64()
			require.Len(t, b, len(a))
			for i := range a {
				assert.InDelta(t, a[i], b[i], 1e-9, "mode=%s interpolated=%v weight %d", mode, interpolated, i)
			}
		}
	}
}

func TestShiftBackward_ParallelMatchesSequential(t *testing.T) {
	// Large enough to split across many chunks; the per-chunk partial
	// accumulators must merge to the sequential result.
	pooled := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64})
	sequential := NewWithConfig(parallel.Config{Enabled: false})
	rng := rand.New(rand.NewSource(25))

	input := randF64Tensor(t, tensor.Shape{2, 4, 32, 33}, rng)
	outputGrad := randF64Tensor(t, tensor.Shape{2, 4, 32, 33}, rng)
	weights := fractionalOffsets(t, 4, 2, rng)

	igPar, wgPar := pooled.Shift2DBackward(outputGrad, weights, input, PaddingReflect, true)
	igSeq, wgSeq := sequential.Shift2DBackward(outputGrad, weights, input, PaddingReflect, true)

	assert.Equal(t, igSeq.AsFloat64(), igPar.AsFloat64())

	a, b := wgSeq.AsFloat64(), wgPar.AsFloat64()
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-8, "weight %d", i)
	}
}

func TestShiftBackward_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(26))

	input := randF64Tensor(t, tensor.Shape{1, 2, 4}, rng)
	weights := f64Tensor(t, []float64{0, 0}, tensor.Shape{2, 1})
	badGrad := randF64Tensor(t, tensor.Shape{1, 2, 5}, rng)

	assert.Panics(t, func() { backend.Shift1DBackward(badGrad, weights, input, PaddingZeros, true) })
}
