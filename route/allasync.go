// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/fiber"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// AllAsync dispatches req to every child on a background goroutine each,
// tracked via [reqctx.Context.Spawn] so the request does not complete until
// every fire-and-forget child has returned, and immediately replies with
// [Null]'s reply without waiting for any child. It is used directly for
// "broadcast and don't care about the result" fan-out, and as the tail of
// [AllInitial]'s composition.
type AllAsync struct {
	name      string
	children  []Handle
	scheduler fiber.Scheduler
}

var _ Handle = &AllAsync{}

// NewAllAsync returns an [AllAsync] handle broadcasting to children via
// scheduler. An empty children list still returns a usable handle (Route
// immediately answers with Null's reply, Traverse visits nothing).
func NewAllAsync(name string, children []Handle, scheduler fiber.Scheduler) *AllAsync {
	return &AllAsync{name: name, children: children, scheduler: scheduler}
}

// Route implements [Handle].
func (a *AllAsync) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	for _, child := range a.children {
		child := child
		spawn(rc, a.scheduler, func() {
			child.Route(ctx, rc, req, op)
		})
	}
	return Null{}.Route(ctx, rc, req, op)
}

// Traverse implements [Handle].
func (a *AllAsync) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	for _, child := range a.children {
		child.Traverse(ctx, rc, req, op, visit)
	}
}

// Name implements [Handle].
func (a *AllAsync) Name() string {
	return a.name
}

// spawn runs fn in the background, preferring rc.Spawn (which ties fn's
// lifetime to the request's completion accounting) and falling back to the
// bare scheduler when rc is nil, e.g. during a unit test exercising a
// composite handle directly.
func spawn(rc *reqctx.Context, scheduler fiber.Scheduler, fn func()) {
	if rc != nil {
		rc.Spawn(fn)
		return
	}
	scheduler.Spawn(fn)
}
