package compute

import (
	"errors"
	"fmt"
	"sync"
)

// ParallelFor runs fn over [0, n) split into contiguous chunks of at least
// minChunk items, one goroutine per chunk, and returns once every chunk has
// finished. A panic inside fn is recovered and returned as an error after
// the remaining chunks complete.
func ParallelFor(workers, n, minChunk int, fn func(start, end int)) error {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if workers > n/minChunk {
		workers = n / minChunk
	}
	if workers <= 1 {
		return guard(0, fn, 0, n)
	}

	chunkSize := (n + workers - 1) / workers
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := min(start+chunkSize, n)

		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			errs[worker] = guard(worker, fn, s, e)
		}(w, start, end)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func guard(worker int, fn func(start, end int), start, end int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d [%d,%d): panic: %v", worker, start, end, r)
		}
	}()
	fn(start, end)
	return nil
}
