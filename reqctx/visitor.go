// SPDX-License-Identifier: GPL-3.0-or-later

package reqctx

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
)

// RouteHandle is the contract every routing-tree node satisfies. It is
// declared here, rather than in package route, because [Context] needs to
// reference it (via [ConfigSnapshot] and [Context.ProxyRoute]) and route's
// own [route.Handle] type needs to accept a *Context parameter: declaring
// the interface in whichever package is lower in the dependency graph and
// aliasing it from the other breaks what would otherwise be an import
// cycle. Package route defines `type Handle = reqctx.RouteHandle`, so the
// two names refer to the identical type.
type RouteHandle interface {
	// Route dispatches req/op through this node and returns exactly one
	// reply. It may block the calling goroutine on a child call that
	// performs I/O.
	Route(ctx context.Context, rc *Context, req mcroute.Request, op mcroute.Op) mcroute.Reply

	// Traverse performs a non-dispatching structural walk, invoking visit
	// on every child this node could route to.
	Traverse(ctx context.Context, rc *Context, req mcroute.Request, op mcroute.Op, visit Visitor)

	// Name returns a stable short identifier for diagnostics and config.
	Name() string
}

// Visitor is invoked by [RouteHandle.Traverse] for each child encountered.
type Visitor func(child RouteHandle, req mcroute.Request, op mcroute.Op)

// ConfigSnapshot is the minimal shape [Context.Process] needs from a routing
// configuration snapshot. `*routeconfig.Snapshot` satisfies this
// structurally; Process is declared against this interface instead of the
// concrete `*routeconfig.Snapshot` type so that reqctx does not need to
// import routeconfig, which itself imports route, which imports reqctx.
type ConfigSnapshot interface {
	// Root returns the snapshot's root route handle.
	Root() RouteHandle
}

// DestinationVisitor observes terminal destination nodes during a recording
// traversal.
type DestinationVisitor func(dest mcroute.DestinationDescription)

// ShardSplitVisitor observes shard-splitting nodes during a recording
// traversal.
type ShardSplitVisitor func(split mcroute.ShardSplitterDescription)
