// Package config holds the process-wide settings read by the multiplication
// driver and accumulator: thread count, minimum work per thread, and the
// accumulator's max load factor. Settings are stored in a package-level
// Settings value initialised once at startup and read through atomics, so
// hot paths never take a lock or lazily initialise global state.
package config

import (
	"math"
	"runtime"
	"sync/atomic"
)

// DefaultMinWorkPerThread is the minimum number of term-by-term
// multiplications a worker must be given before the driver will use it.
const DefaultMinWorkPerThread = 100000

// DefaultMaxLoadFactor is the accumulator's default max load factor.
const DefaultMaxLoadFactor = 1.0

// Settings is the process-wide configuration object. The zero value is not
// usable; construct one with New and install it with SetGlobal. Until
// SetGlobal is called, Global returns a Settings built by New with the
// defaults.
type Settings struct {
	nThreads         atomic.Int64
	minWorkPerThread atomic.Int64
	maxLoadFactorBits atomic.Uint64
}

// New builds a Settings populated with the supplied options layered over the
// defaults (n_threads = runtime.GOMAXPROCS(0), min_work_per_thread =
// DefaultMinWorkPerThread, max_load_factor = DefaultMaxLoadFactor).
func New(opts ...Option) *Settings {
	s := &Settings{}
	s.nThreads.Store(int64(runtime.GOMAXPROCS(0)))
	s.minWorkPerThread.Store(DefaultMinWorkPerThread)
	s.maxLoadFactorBits.Store(floatBits(DefaultMaxLoadFactor))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option is a functional option for configuring a Settings value.
type Option func(*Settings)

// WithNThreads sets the upper bound on workers per multiplication call.
func WithNThreads(n int) Option {
	return func(s *Settings) { s.nThreads.Store(int64(n)) }
}

// WithMinWorkPerThread sets the minimum number of pair multiplications a
// worker must receive before the driver uses additional threads.
func WithMinWorkPerThread(n int) Option {
	return func(s *Settings) { s.minWorkPerThread.Store(int64(n)) }
}

// WithMaxLoadFactor sets the accumulator's max load factor.
func WithMaxLoadFactor(f float64) Option {
	return func(s *Settings) { s.maxLoadFactorBits.Store(floatBits(f)) }
}

// NThreads returns the configured upper bound on worker count.
func (s *Settings) NThreads() int { return int(s.nThreads.Load()) }

// MinWorkPerThread returns the configured minimum work per thread.
func (s *Settings) MinWorkPerThread() int { return int(s.minWorkPerThread.Load()) }

// MaxLoadFactor returns the configured max load factor.
func (s *Settings) MaxLoadFactor() float64 { return floatFromBits(s.maxLoadFactorBits.Load()) }

// SetNThreads atomically updates the thread count bound.
func (s *Settings) SetNThreads(n int) { s.nThreads.Store(int64(n)) }

var global atomic.Pointer[Settings]

func init() { global.Store(New()) }

// Global returns the process-wide Settings instance.
func Global() *Settings { return global.Load() }

// SetGlobal installs s as the process-wide Settings instance.
func SetGlobal(s *Settings) { global.Store(s) }

func floatBits(f float64) uint64   { return math.Float64bits(f) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }
