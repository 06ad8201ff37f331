// Package parallel provides the worker pool that drives the shift
// kernel sweeps: a flattened iteration space split into contiguous
// static chunks, one goroutine per chunk. Per-element cost is uniform,
// so no work stealing is needed.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// chunkSize returns the static split size for an iteration space of n.
func chunkSize(n int, cfg Config) int {
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
}

// NumChunks returns how many chunks ForChunks will run for an iteration
// space of n under cfg. Callers sizing per-chunk accumulators must use
// this to match the split.
func NumChunks(n int, cfg Config) int {
	if n <= 0 {
		return 0
	}
	if !cfg.Enabled || n < cfg.MinChunkSize {
		return 1
	}
	cs := chunkSize(n, cfg)
	return (n + cs - 1) / cs
}

// ForChunks splits [0, n) into NumChunks(n, cfg) contiguous chunks and
// executes f(chunk, start, end) for each, one goroutine per chunk.
// Chunk indices are dense in [0, NumChunks) so they can index
// per-chunk partial buffers merged after the sweep.
func ForChunks(n int, f func(chunk, start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || n < cfg.MinChunkSize {
		f(0, 0, n)
		return
	}

	var wg sync.WaitGroup
	cs := chunkSize(n, cfg)
	chunk := 0
	for start := 0; start < n; start += cs {
		end := min(start+cs, n)
		wg.Add(1)
		go func(ci, s, e int) {
			defer wg.Done()
			f(ci, s, e)
		}(chunk, start, end)
		chunk++
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is
// too small.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}
