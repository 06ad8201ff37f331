// Package cpu implements the CPU kernels for the learnable per-channel
// shift transform: forward, backward and quantized forward evaluation
// over 1, 2 or 3 spatial axes.
package cpu

import (
	"github.com/guochengqian/sparseshift/internal/parallel"
)

// CPUBackend runs the shift kernels on a fixed-size goroutine pool.
type CPUBackend struct {
	pool parallel.Config
}

// New creates a CPU backend with the default pool configuration.
func New() *CPUBackend {
	return &CPUBackend{pool: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with an explicit pool
// configuration. Disabling the pool gives a sequential reference
// execution with identical results.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{pool: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}
