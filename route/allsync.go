// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// AllSync dispatches req to every child in parallel via an
// [errgroup.Group], waits for all of them, and returns the single worst
// reply under [mcroute.ResultCode.Worse] (hard-error > soft-error > miss >
// hit), with the lowest-index child breaking ties among equally-severe
// replies. It is used for writes that must reach every replica before the
// client is told the write succeeded.
type AllSync struct {
	name     string
	children []Handle
}

var _ Handle = &AllSync{}

// NewAllSync returns an [AllSync] handle. An empty children list
// collapses to [Null]; a single child collapses to that child directly.
func NewAllSync(name string, children []Handle) Handle {
	if len(children) == 0 {
		return NewNull()
	}
	if len(children) == 1 {
		return children[0]
	}
	return &AllSync{name: name, children: children}
}

// Route implements [Handle].
func (a *AllSync) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	replies := make([]mcroute.Reply, len(a.children))

	var g errgroup.Group
	for i, child := range a.children {
		i, child := i, child
		g.Go(func() error {
			replies[i] = child.Route(ctx, rc, req, op)
			return nil
		})
	}
	_ = g.Wait()

	worst := replies[0]
	for _, reply := range replies[1:] {
		if reply.Result.Worse(worst.Result) {
			worst = reply
		}
	}
	return worst
}

// Traverse implements [Handle].
func (a *AllSync) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	for _, child := range a.children {
		child.Traverse(ctx, rc, req, op, visit)
	}
}

// Name implements [Handle].
func (a *AllSync) Name() string {
	return a.name
}
