package slab

import "sync/atomic"

// CountingAllocator tracks current/total/peak byte and object counts for a
// pool. It wraps nothing (Go has no pluggable system allocator); it exists
// purely for the diagnostics spec.md §5 asks the "counting allocator" to
// provide, recorded the same way the teacher's PoolStats tracks hits and
// misses (pkg/minikanren/pool.go).
type CountingAllocator struct {
	currentBytes atomic.Int64
	totalBytes   atomic.Int64
	peakBytes    atomic.Int64
	currentCount atomic.Int64
	totalCount   atomic.Int64
}

// CountingStats is an immutable snapshot of a CountingAllocator.
type CountingStats struct {
	CurrentBytes int64
	TotalBytes   int64
	PeakBytes    int64
	CurrentCount int64
	TotalCount   int64
}

// Record registers an allocation of n bytes.
func (c *CountingAllocator) Record(n int64) {
	c.currentBytes.Add(n)
	c.totalBytes.Add(n)
	c.currentCount.Add(1)
	c.totalCount.Add(1)
	for {
		cur := c.currentBytes.Load()
		peak := c.peakBytes.Load()
		if cur <= peak || c.peakBytes.CompareAndSwap(peak, cur) {
			break
		}
	}
}

// Release registers that n bytes previously Record-ed have been freed.
func (c *CountingAllocator) Release(n int64) {
	c.currentBytes.Add(-n)
	c.currentCount.Add(-1)
}

// Snapshot returns the current counters.
func (c *CountingAllocator) Snapshot() CountingStats {
	return CountingStats{
		CurrentBytes: c.currentBytes.Load(),
		TotalBytes:   c.totalBytes.Load(),
		PeakBytes:    c.peakBytes.Load(),
		CurrentCount: c.currentCount.Load(),
		TotalCount:   c.totalCount.Load(),
	}
}
