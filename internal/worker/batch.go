package worker

import "context"

// RunAll executes jobs on a pool of the given size and returns their
// results in job order. The pool is shut down even if ctx is cancelled.
func RunAll(ctx context.Context, workers int, jobs []Job) []Result {
	if len(jobs) == 0 {
		return []Result{}
	}

	pool := NewPool(ctx, workers)
	pool.Start()
	defer pool.Shutdown()

	for _, job := range jobs {
		pool.Submit(job)
	}

	results := pool.Wait()

	// jobs never submitted because ctx ended early get no slot in results
	if len(results) < len(jobs) {
		padded := make([]Result, len(jobs))
		copy(padded, results)
		results = padded
	}

	return results
}
