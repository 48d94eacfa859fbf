// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// Failover tries each child in order, stopping at the first reply that
// [mcroute.FailoverErrorsSettings.ShouldFailover] does not flag. An empty
// children list collapses to [Null]; a single child is a plain passthrough.
// If [reqctx.Context.FailoverDisabled] is set, only the first child is ever
// tried, regardless of its reply.
type Failover struct {
	name     string
	children []Handle
	settings *mcroute.FailoverErrorsSettings
}

var _ Handle = &Failover{}

// NewFailover returns a [Handle] trying children in order until one
// succeeds, using settings (or
// [mcroute.DefaultFailoverErrorsSettings] if nil) to decide whether a
// reply should trigger the next child. An empty children list returns
// [Null] directly instead of a [*Failover]; a single-child list collapses
// to that child directly, since a failover with nothing to fail over to
// is a no-op wrapper.
func NewFailover(name string, children []Handle, settings *mcroute.FailoverErrorsSettings) Handle {
	if len(children) == 0 {
		return NewNull()
	}
	if len(children) == 1 {
		return children[0]
	}
	if settings == nil {
		settings = mcroute.DefaultFailoverErrorsSettings()
	}
	return &Failover{name: name, children: children, settings: settings}
}

// Route implements [Handle].
func (f *Failover) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	disabled := rc != nil && rc.FailoverDisabled()

	var reply mcroute.Reply
	for i, child := range f.children {
		reply = child.Route(ctx, rc, req, op)
		if disabled {
			return reply
		}
		if i == len(f.children)-1 {
			return reply
		}
		if !f.settings.ShouldFailover(reply, op) {
			return reply
		}
	}
	return reply
}

// Traverse implements [Handle].
func (f *Failover) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	for _, child := range f.children {
		child.Traverse(ctx, rc, req, op, visit)
	}
}

// Name implements [Handle].
func (f *Failover) Name() string {
	return f.name
}
