package dynamo

import "github.com/dgravesa/go-parallel/parallel"

// ParallelFor calls fn(i) for every i in [0, n) using up to workers
// goroutines. Each index is visited exactly once; fn must only write to
// storage owned by index i.
func ParallelFor(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	if workers > n {
		workers = n
	}
	parallel.WithNumGoroutines(workers).For(n, func(i, _ int) {
		fn(i)
	})
}
