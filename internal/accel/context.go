// SPDX-License-Identifier: MIT
/*
Package accel provides a compute device abstraction for data-parallel
kernels. A Context owns a fixed pool of worker goroutines and executes
kernels over index grids, mirroring how a GPU compute queue dispatches
workgroups: Dispatch gives no ordering guarantee between grid indices
within one call, and completion of Dispatch is the only barrier between
successive kernels.

A Context may be shared by multiple analyzers; each Dispatch call fully
drains its own work before returning, so interleaved submissions from
different owners are safe.
*/
package accel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"audioviz/internal/log"
)

// GroupSize is the number of grid indices handed to a worker per task,
// the host-side analog of a GPU workgroup.
const GroupSize = 256

var (
	// ErrClosed is returned when work is submitted to a closed Context.
	ErrClosed = errors.New("accel: context closed")

	// ErrInvalidGrid is returned for a negative grid size.
	ErrInvalidGrid = errors.New("accel: invalid grid size")
)

// DeviceInfo describes the compute device backing a Context.
type DeviceInfo struct {
	Name    string
	Workers int
}

type task struct {
	start, end int
	kernel     func(i int)
	wg         *sync.WaitGroup
}

// Context is a handle to the worker pool. It is safe for concurrent
// Dispatch calls, though callers sharing buffers across dispatches must
// serialize externally.
type Context struct {
	device DeviceInfo
	tasks  chan task

	mu     sync.RWMutex
	closed bool
}

// NewContext creates a Context with one worker per logical CPU.
func NewContext() (*Context, error) {
	return NewContextWithWorkers(runtime.NumCPU())
}

// NewContextWithWorkers creates a Context with a fixed worker count.
func NewContextWithWorkers(workers int) (*Context, error) {
	if workers < 1 {
		return nil, fmt.Errorf("accel: worker count must be positive, got %d", workers)
	}

	c := &Context{
		device: DeviceInfo{
			Name:    fmt.Sprintf("cpu-pool/%d", workers),
			Workers: workers,
		},
		tasks: make(chan task, workers*4),
	}

	for i := 0; i < workers; i++ {
		go c.worker()
	}

	log.Debugf("accel: context ready (%s)", c.device.Name)
	return c, nil
}

func (c *Context) worker() {
	for t := range c.tasks {
		for i := t.start; i < t.end; i++ {
			t.kernel(i)
		}
		t.wg.Done()
	}
}

// Device returns information about the backing device.
func (c *Context) Device() DeviceInfo {
	return c.device
}

// Dispatch executes kernel(i) for every i in [0, n) across the worker
// pool and blocks until all invocations have completed. Invocations
// within one dispatch may run in any order and concurrently; two
// dispatches never overlap from the caller's point of view.
func (c *Context) Dispatch(n int, kernel func(i int)) error {
	if n < 0 {
		return ErrInvalidGrid
	}
	if n == 0 {
		return nil
	}

	var wg sync.WaitGroup

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrClosed
	}
	for start := 0; start < n; start += GroupSize {
		end := start + GroupSize
		if end > n {
			end = n
		}
		wg.Add(1)
		c.tasks <- task{start: start, end: end, kernel: kernel, wg: &wg}
	}
	c.mu.RUnlock()

	wg.Wait()
	return nil
}

// Close shuts down the worker pool. Dispatch calls after Close return
// ErrClosed; Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.tasks)
	log.Debugf("accel: context closed (%s)", c.device.Name)
	return nil
}
