//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package route implements the routing tree's node types: the terminal
// [Destination] that forwards to a [transport.Pool], and the composite
// handles ([Failover], [AllInitial], [AllSync], [AllAsync], [AllMajority],
// [Hash], [Latest], [Shadow]) that combine children into one reply.
//
// [Handle] and [Visitor] are type aliases for interfaces declared in package
// reqctx, not new types: reqctx.Context needs to hand itself to a route
// handle's Route method, and a route handle needs to accept a *reqctx.Context
// parameter, so the interface has to live in whichever package is lower in
// the dependency graph. See the reqctx.RouteHandle doc comment for the full
// rationale.
package route
