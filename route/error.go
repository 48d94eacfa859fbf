// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// Error answers every request with a fixed [mcroute.LocalError] reply,
// carrying Message as the reply's detail. It is used in place of a
// misconfigured subtree (e.g. an unknown pool name) so the failure is
// visible per-request instead of aborting config load for the whole tree.
type Error struct {
	Message string
}

var _ Handle = Error{}

// NewError returns an [Error] handle that always replies with message.
func NewError(message string) Error {
	return Error{Message: message}
}

// Route implements [Handle].
func (e Error) Route(_ context.Context, _ *reqctx.Context, _ mcroute.Request, _ mcroute.Op) mcroute.Reply {
	return mcroute.NewErrorReply(mcroute.LocalError, e.Message)
}

// Traverse implements [Handle]; Error has no children to visit.
func (Error) Traverse(context.Context, *reqctx.Context, mcroute.Request, mcroute.Op, Visitor) {
}

// Name implements [Handle].
func (Error) Name() string {
	return "error"
}
