// SPDX-License-Identifier: GPL-3.0-or-later

package fiber

import (
	"context"
	"sync"
	"sync/atomic"
)

// Scheduler schedules background work. A [*Worker] implements it; composite
// routes depend on the interface rather than the concrete type so tests can
// substitute a synchronous scheduler that runs fn inline.
type Scheduler interface {
	// Spawn runs fn on a new goroutine tracked by the scheduler's drain
	// accounting. Spawn never blocks the caller.
	Spawn(fn func())
}

// Worker is one shard of the routing proxy: every request accepted onto a
// worker stays pinned to it from accept through completion. The zero value
// is not usable; construct with [NewWorker].
type Worker struct {
	mainCh   chan func()
	mainDone chan struct{}
	stopMain sync.Once
	stopCh   chan struct{}

	inflight sync.WaitGroup
	closing  atomic.Bool

	reqMu    sync.Mutex
	requests map[uint64]func()
}

var _ Scheduler = &Worker{}

// NewWorker returns a [*Worker] with its main goroutine already running.
func NewWorker() *Worker {
	w := &Worker{
		mainCh:   make(chan func(), 256),
		mainDone: make(chan struct{}),
		stopCh:   make(chan struct{}),
	}
	go w.runMain()
	return w
}

func (w *Worker) runMain() {
	defer close(w.mainDone)
	for {
		select {
		case fn := <-w.mainCh:
			fn()
		case <-w.stopCh:
			w.drainMainQueue()
			return
		}
	}
}

func (w *Worker) drainMainQueue() {
	for {
		select {
		case fn := <-w.mainCh:
			fn()
		default:
			return
		}
	}
}

// RunInMain posts fn to the worker's main goroutine. fn runs strictly after
// every closure posted before it, in FIFO order. RunInMain never blocks the
// caller waiting for fn to run.
//
// Use this for teardown-adjacent work (stats finalization, a request's
// final log line) that should not run inline on whichever background
// goroutine happens to finish last.
func (w *Worker) RunInMain(fn func()) {
	w.mainCh <- fn
}

// Spawn implements [Scheduler]. The spawned goroutine is tracked by
// [Worker.Drain]'s accounting regardless of whether the worker is shutting
// down; callers that must not start new work after [Worker.Shutdown] begins
// should check their own request context state first.
func (w *Worker) Spawn(fn func()) {
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		fn()
	}()
}

// TrackRequest registers abort, invoked at most once, as the way to force
// requestID to completion if [Worker.Drain]'s deadline expires before it
// finishes on its own. Request-carrying code (e.g. [reqctx.Context]) calls
// this when accepted and [Worker.UntrackRequest] once it has replied.
func (w *Worker) TrackRequest(requestID uint64, abort func()) {
	w.reqMu.Lock()
	defer w.reqMu.Unlock()
	if w.requests == nil {
		w.requests = make(map[uint64]func())
	}
	w.requests[requestID] = abort
}

// UntrackRequest removes requestID from the set [Worker.Drain] would abort,
// a no-op if requestID was never tracked or already untracked.
func (w *Worker) UntrackRequest(requestID uint64) {
	w.reqMu.Lock()
	defer w.reqMu.Unlock()
	delete(w.requests, requestID)
}

// Drain waits for every goroutine started via [Worker.Spawn] to finish, or
// for ctx to expire first. It also installs a [context.AfterFunc] watcher
// on ctx, binding every still-tracked request's lifetime to ctx the same
// way a resource can be bound to a context's cancellation: on expiry, it
// force-completes every request still registered via [Worker.TrackRequest]
// through its abort callback (which for [reqctx.Context] means replying
// [mcroute.Aborted]) instead of leaving them to hang indefinitely.
func (w *Worker) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.inflight.Wait()
		close(done)
	}()

	aborted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(aborted)
		w.abortTrackedRequests()
	})

	select {
	case <-done:
		if !stop() {
			<-aborted
		}
		return nil
	case <-ctx.Done():
		if stop() {
			w.abortTrackedRequests()
		} else {
			<-aborted
		}
		return ctx.Err()
	}
}

// abortTrackedRequests invokes every still-registered abort callback and
// clears the registry; run by Drain's [context.AfterFunc] watcher, or by
// Drain itself if ctx expired before the watcher started.
func (w *Worker) abortTrackedRequests() {
	w.reqMu.Lock()
	aborts := make([]func(), 0, len(w.requests))
	for _, abort := range w.requests {
		aborts = append(aborts, abort)
	}
	w.requests = nil
	w.reqMu.Unlock()

	for _, abort := range aborts {
		abort()
	}
}

// Shutdown marks the worker as closing and stops its main goroutine once
// its queue is drained. Shutdown does not wait for [Worker.Spawn]ed
// background work; call [Worker.Drain] first if that is required.
func (w *Worker) Shutdown() {
	w.closing.Store(true)
	w.stopMain.Do(func() {
		close(w.stopCh)
	})
	<-w.mainDone
}

// Closing reports whether [Worker.Shutdown] has been called.
func (w *Worker) Closing() bool {
	return w.closing.Load()
}
