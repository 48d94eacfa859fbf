// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// AllMajority dispatches req to every child in parallel and returns the
// most common [mcroute.ResultCode] among the replies, breaking ties in
// favor of the lowest-index child reporting one of the tied codes. It is
// used to read through replicated pools and answer with whatever the
// quorum agrees on.
type AllMajority struct {
	name     string
	children []Handle
}

var _ Handle = &AllMajority{}

// NewAllMajority returns an [AllMajority] handle. An empty children list
// collapses to [Null]; a single child collapses to that child directly.
func NewAllMajority(name string, children []Handle) Handle {
	if len(children) == 0 {
		return NewNull()
	}
	if len(children) == 1 {
		return children[0]
	}
	return &AllMajority{name: name, children: children}
}

// Route implements [Handle].
func (a *AllMajority) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
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

	counts := make(map[mcroute.ResultCode]int, len(replies))
	firstIndex := make(map[mcroute.ResultCode]int, len(replies))
	for i, reply := range replies {
		counts[reply.Result]++
		if _, ok := firstIndex[reply.Result]; !ok {
			firstIndex[reply.Result] = i
		}
	}

	bestCode := replies[0].Result
	bestCount := counts[bestCode]
	bestFirst := firstIndex[bestCode]
	for code, count := range counts {
		if count > bestCount || (count == bestCount && firstIndex[code] < bestFirst) {
			bestCode, bestCount, bestFirst = code, count, firstIndex[code]
		}
	}
	return replies[bestFirst]
}

// Traverse implements [Handle].
func (a *AllMajority) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	for _, child := range a.children {
		child.Traverse(ctx, rc, req, op, visit)
	}
}

// Name implements [Handle].
func (a *AllMajority) Name() string {
	return a.name
}
