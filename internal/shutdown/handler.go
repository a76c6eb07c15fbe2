package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler manages graceful shutdown: a root context cancelled on SIGINT or
// SIGTERM, tracked background work, and cleanup functions run once.
type Handler struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	mu         sync.Mutex
	cleanupFns []func()
}

// New creates a new shutdown handler derived from parent.
func New(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	return &Handler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the shutdown context
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers a cleanup function. Cleanups run in reverse
// registration order, like deferred calls.
func (h *Handler) AddCleanup(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFns = append(h.cleanupFns, fn)
}

// Listen starts listening for shutdown signals. The listener exits once the
// context is done, whatever cancelled it.
func (h *Handler) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.Shutdown()
		case <-h.ctx.Done():
		}
	}()
}

// Shutdown cancels the context and runs the cleanup functions. Only the
// first call has any effect.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		fns := h.cleanupFns
		h.cleanupFns = nil
		h.mu.Unlock()

		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	})
}

// Go runs fn in a tracked goroutine with the shutdown context.
func (h *Handler) Go(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn(h.ctx)
	}()
}

// Wait waits for all tracked work to complete
func (h *Handler) Wait() {
	h.wg.Wait()
}
