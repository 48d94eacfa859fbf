// SPDX-License-Identifier: GPL-3.0-or-later

package route

import "github.com/mcrouter-go/mcrouter/reqctx"

// Handle is the contract every routing-tree node satisfies. It is a type
// alias for [reqctx.RouteHandle]; see that type's doc comment for why the
// interface is declared in package reqctx instead of here.
type Handle = reqctx.RouteHandle

// Visitor is invoked by [Handle.Traverse] for each child encountered. It is
// a type alias for [reqctx.Visitor].
type Visitor = reqctx.Visitor
