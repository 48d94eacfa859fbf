// SPDX-License-Identifier: GPL-3.0-or-later

// Package routetest provides test doubles for exercising package route
// without real transport or fiber machinery.
package routetest

import (
	"context"
	"sync"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// SyncScheduler runs every spawned function inline, making composite-route
// tests deterministic without sleeps.
type SyncScheduler struct{}

// Spawn implements [fiber.Scheduler].
func (SyncScheduler) Spawn(fn func()) {
	fn()
}

// FuncHandle is a [route.Handle] test double returning a fixed reply and
// recording every call it receives.
type FuncHandle struct {
	NameValue string
	ReplyFunc func(req mcroute.Request, op mcroute.Op) mcroute.Reply

	mu    sync.Mutex
	calls []mcroute.Request
}

var _ reqctx.RouteHandle = &FuncHandle{}

// Route implements [reqctx.RouteHandle].
func (h *FuncHandle) Route(_ context.Context, _ *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	h.mu.Lock()
	h.calls = append(h.calls, req)
	h.mu.Unlock()

	if h.ReplyFunc != nil {
		return h.ReplyFunc(req, op)
	}
	return mcroute.NewReply(mcroute.Found)
}

// Traverse implements [reqctx.RouteHandle].
func (h *FuncHandle) Traverse(_ context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit reqctx.Visitor) {
	if visit != nil {
		visit(h, req, op)
	}
}

// Name implements [reqctx.RouteHandle].
func (h *FuncHandle) Name() string {
	return h.NameValue
}

// Calls returns every request passed to Route so far, in order.
func (h *FuncHandle) Calls() []mcroute.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]mcroute.Request, len(h.calls))
	copy(out, h.calls)
	return out
}

// CallCount returns the number of times Route has been called.
func (h *FuncHandle) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}
