package dynamo

import (
	"runtime"
	"sync"
	"sync/atomic"
)

var workers atomic.Int64

func init() {
	workers.Store(int64(runtime.NumCPU()))
}

// SetWorkers caps the goroutines ParallelFor may use. Values below 1 reset to
// the CPU count.
func SetWorkers(n int) {
	if n < 1 {
		n = runtime.NumCPU()
	}
	workers.Store(int64(n))
}

func Workers() int { return int(workers.Load()) }

// ParallelFor executes fn over [0, n) split into contiguous chunks of at
// least minChunk elements.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := Workers()
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	w := numWorkers
	if n/minChunk < w {
		w = n / minChunk
	}
	if w < 1 {
		w = 1
	}

	chunkSize := (n + w - 1) / w

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
