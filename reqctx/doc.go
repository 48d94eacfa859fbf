//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package reqctx implements the per-request context that every route handle
// invocation carries by reference. A [*Context] is created once per client
// request, handed to the routing tree's root [RouteHandle], and threaded
// explicitly through every subrequest it spawns — Go has no fiber-local
// storage, so "the current request" is an ordinary parameter rather than a
// dynamically-scoped value, and a [Context] spawned into a background
// goroutine is reached the same way a synchronous child is.
//
// A [Context] is either in normal mode, where exactly one [mcroute.Reply] is
// enqueued and exactly one completion callback fires, or in recording mode,
// where no subrequest reaches a real upstream and a pair of visitor
// callbacks observes the shape of the tree instead. The two modes are
// mutually exclusive for a [Context]'s entire life.
package reqctx
