package dynamo

import (
	"runtime"
	"sync"
)

// Workers resolves a configured worker count; n <= 0 means one per CPU.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Chunks returns how many contiguous chunks ParallelForWorkers splits [0, n)
// into. The split depends only on n, workers and minChunk.
func Chunks(n, workers, minChunk int) int {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		return 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// ParallelFor executes fn in parallel over the range [0, n) and returns once
// every chunk has finished.
func ParallelFor(n, workers, minChunk int, fn func(start, end int)) {
	ParallelForWorkers(n, workers, minChunk, func(_, start, end int) {
		fn(start, end)
	})
}

// ParallelForWorkers is ParallelFor with the chunk index passed to fn, so
// callers can keep per-chunk accumulators. Chunk w always covers the same
// index range for the same arguments.
func ParallelForWorkers(n, workers, minChunk int, fn func(w, start, end int)) {
	if n <= 0 {
		return
	}
	chunks := Chunks(n, workers, minChunk)
	if chunks == 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + chunks - 1) / chunks

	var wg sync.WaitGroup
	wg.Add(chunks)

	for w := 0; w < chunks; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(w, s, e int) {
			defer wg.Done()
			if s < e {
				fn(w, s, e)
			}
		}(w, start, end)
	}

	wg.Wait()
}
