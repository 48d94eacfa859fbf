// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/fiber"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// AllInitial answers from its first child synchronously and fans the
// remaining children out fire-and-forget, internally composed from a plain
// call to the first child plus an [AllAsync] over children[1:]. It is used
// to shadow writes to replica pools without making the client wait on them.
type AllInitial struct {
	name  string
	first Handle
	rest  *AllAsync
}

var _ Handle = &AllInitial{}

// NewAllInitial returns a [Handle] answering from children[0] and
// broadcasting children[1:] via [AllAsync]. An empty children list
// collapses to [Null]; a single child collapses to that child directly.
func NewAllInitial(name string, children []Handle, scheduler fiber.Scheduler) Handle {
	if len(children) == 0 {
		return NewNull()
	}
	if len(children) == 1 {
		return children[0]
	}
	return &AllInitial{
		name:  name,
		first: children[0],
		rest:  NewAllAsync(name+".rest", children[1:], scheduler),
	}
}

// Route implements [Handle].
func (a *AllInitial) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	a.rest.Route(ctx, rc, req, op)
	return a.first.Route(ctx, rc, req, op)
}

// Traverse implements [Handle].
func (a *AllInitial) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	a.first.Traverse(ctx, rc, req, op, visit)
	a.rest.Traverse(ctx, rc, req, op, visit)
}

// Name implements [Handle].
func (a *AllInitial) Name() string {
	return a.name
}
