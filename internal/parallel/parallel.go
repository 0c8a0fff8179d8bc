// Package parallel splits index ranges across goroutines for the CPU kernels.
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

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{}
}

// Chunks calls f once per contiguous chunk [start, end) covering [0, n).
// Chunks run concurrently unless parallelism is disabled or n is smaller
// than MinChunkSize, in which case f(0, n) runs on the caller's goroutine.
func Chunks(n int, cfg Config, f func(start, end int)) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n), chunked as in Chunks.
func For(n int, cfg Config, f func(i int)) {
	Chunks(n, cfg, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	})
}
