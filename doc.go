// SPDX-License-Identifier: GPL-3.0-or-later

// Package mcroute provides the routing core of a memcached-protocol proxy.
//
// # Core Abstraction
//
// The package is built around a tree of route handles, each satisfying the
// github.com/mcrouter-go/mcrouter/route.Handle interface:
//
//	type Handle interface {
//		Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply
//		Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor)
//		Name() string
//	}
//
// Each handle either answers a request directly or fans it out to children
// and combines their replies. A client request carries exactly one
// github.com/mcrouter-go/mcrouter/reqctx.Context through the whole tree,
// including any background work the tree schedules after the client-visible
// reply has already been sent.
//
// # Available Primitives
//
// Terminal routes (package route):
//   - route.Null: always misses, no-op write
//   - route.Error: surfaces a configuration problem as a local error
//   - route.Destination: forwards to one upstream via a transport.Pool
//
// Fan-out routes (package route):
//   - route.Failover: sequential try-next-on-failure
//   - route.AllInitial: answer from the first child, fire-and-forget the rest
//   - route.AllSync: answer with the worst reply once every child answers
//   - route.AllMajority: answer with the most common reply
//   - route.AllAsync: fire-and-forget every child, answer Null immediately
//   - route.Hash: answer from exactly one child, chosen by key hash
//   - route.Latest: reorder children by freshness, then behave as Failover
//
// Decorators (package route):
//   - route.Shadow: mirror a fraction of traffic to a shadow subtree
//     without affecting the client-visible reply
//
// Composition: the factory in package routeconfig builds a route.Handle
// tree from a JSON configuration document.
//
// # Concurrency
//
// This package uses ordinary goroutines where the original design used
// cooperative fibers: a route.Handle.Route call may block the calling
// goroutine at any point a child performs I/O, exactly as a fiber would
// suspend. route.AllSync and route.AllMajority run one goroutine per child
// in an errgroup.Group and join on their completion; route.AllInitial,
// route.AllAsync and route.Shadow schedule background children via
// github.com/mcrouter-go/mcrouter/fiber.Scheduler.Spawn and do not wait
// for them.
//
// # Observability
//
// Structured logging goes through SLogger (compatible with log/slog). By
// default, logging is disabled. The request context takes a logger via
// reqctx.Context.SetLogger, and the transport pipeline stages take one as
// a constructor argument or Logger field. Error classification is
// configurable via ErrClassifier; by default, DefaultErrClassifier
// (github.com/bassosimone/errclass) is used.
//
// Two kinds of structured log events are emitted:
//
//   - Info for request-context lifecycle (requestAccepted, requestReplied,
//     requestCompleted, routePanic) and for transport connect, TLS
//     handshake and close steps.
//   - Debug for transport reads, writes and deadline changes.
//
// Route handles themselves do not log.
package mcroute
