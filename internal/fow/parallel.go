package fow

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// rowRange is a half-open [Lo, Hi) range of output rows owned by one worker.
type rowRange struct {
	Lo, Hi int
}

// splitRows partitions rows into at most workers contiguous, disjoint ranges
// covering [0, rows). Empty ranges are dropped.
func splitRows(rows, workers int) []rowRange {
	if rows <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	ranges := make([]rowRange, 0, workers)
	for w := 0; w < workers; w++ {
		lo := w * rows / workers
		hi := (w + 1) * rows / workers
		if lo < hi {
			ranges = append(ranges, rowRange{Lo: lo, Hi: hi})
		}
	}
	return ranges
}

// forEachRowRange runs fn over disjoint row ranges in parallel and returns
// once every range is done. fn must only write rows inside its range.
func forEachRowRange(rows, workers int, fn func(lo, hi int)) {
	ranges := splitRows(rows, workers)
	if len(ranges) == 1 {
		fn(ranges[0].Lo, ranges[0].Hi)
		return
	}

	var g errgroup.Group
	for _, r := range ranges {
		g.Go(func() error {
			fn(r.Lo, r.Hi)
			return nil
		})
	}
	_ = g.Wait()
}

// resolveWorkers turns the configured worker count into an effective one.
// Zero means one worker per schedulable CPU.
func resolveWorkers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
