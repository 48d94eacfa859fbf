// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// Null answers every request with a miss-shaped reply and never dispatches
// anywhere. It is the canonical collapse target for an empty children list
// (see [Failover] and the All* composites).
type Null struct{}

var _ Handle = Null{}

// NewNull returns a [Null] handle.
func NewNull() Null {
	return Null{}
}

// Route implements [Handle].
func (Null) Route(_ context.Context, _ *reqctx.Context, _ mcroute.Request, op mcroute.Op) mcroute.Reply {
	switch op.Family() {
	case mcroute.OpFamilyRead:
		return mcroute.NewReply(mcroute.NotFound)
	case mcroute.OpFamilyDelete:
		return mcroute.NewReply(mcroute.NotFound)
	default:
		return mcroute.NewReply(mcroute.NotStored)
	}
}

// Traverse implements [Handle]; Null has no children to visit.
func (Null) Traverse(context.Context, *reqctx.Context, mcroute.Request, mcroute.Op, Visitor) {
}

// Name implements [Handle].
func (Null) Name() string {
	return "null"
}
