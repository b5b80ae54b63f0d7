package astc

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// runBlockPool drives per-block encode work across totalBlocks blocks, either sequentially or
// spread across GOMAXPROCS goroutines pulling indices off a shared atomic counter. newWorker is
// called once per goroutine (once, on the calling goroutine itself, in the sequential case) so
// each can set up its own reusable scratch buffers instead of allocating one per block. The first
// error from any worker stops every other worker from claiming new indices and is returned once
// all goroutines have exited.
func runBlockPool(totalBlocks int, newWorker func() func(idx int) error) error {
	procs := runtime.GOMAXPROCS(0)
	if procs < 1 {
		procs = 1
	}
	if procs > totalBlocks {
		procs = totalBlocks
	}

	// Small jobs are faster to run sequentially than to hand off to a pool.
	if procs == 1 || totalBlocks < 32 {
		work := newWorker()
		for idx := 0; idx < totalBlocks; idx++ {
			if err := work(idx); err != nil {
				return err
			}
		}
		return nil
	}

	var next uint32
	var stop uint32
	var firstErr error
	var errOnce sync.Once

	var wg sync.WaitGroup
	wg.Add(procs)
	for w := 0; w < procs; w++ {
		go func() {
			defer wg.Done()
			work := newWorker()
			for {
				if atomic.LoadUint32(&stop) != 0 {
					return
				}
				idx := int(atomic.AddUint32(&next, 1) - 1)
				if idx >= totalBlocks {
					return
				}
				if err := work(idx); err != nil {
					errOnce.Do(func() {
						firstErr = err
						atomic.StoreUint32(&stop, 1)
					})
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
