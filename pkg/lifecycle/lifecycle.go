// Package lifecycle coordinates startup and shutdown of long-lived subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs startup hooks concurrently and, on Shutdown, cancels its
// context and runs the registered shutdown hooks concurrently.
type Coordinator struct {
	ctx       context.Context
	cancel    context.CancelFunc
	startupWg sync.WaitGroup

	mu       sync.Mutex
	shutdown []func()
	ready    bool
	stopped  bool
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup launches fn immediately. WaitForStartup blocks until every
// startup hook has returned.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers fn to run after the context is cancelled.
// Hooks registered after Shutdown has started are ignored.
func (c *Coordinator) OnShutdown(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.shutdown = append(c.shutdown, fn)
}

// Ready returns true after all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready && !c.stopped
}

// WaitForStartup blocks until all startup hooks have completed and marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
}

// Shutdown cancels the context and waits for the shutdown hooks to finish
// within timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.mu.Lock()
	c.stopped = true
	hooks := c.shutdown
	c.shutdown = nil
	c.mu.Unlock()

	c.cancel()

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Go(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
