//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package fiber provides the per-worker scheduling primitive the routing
// core runs on: one [Worker] pins a shard of requests to a goroutine pool
// plus a single dedicated main goroutine, the Go rendition of the cooperative
// fiber scheduler the original proxy used. A route handle's Route call looks
// synchronous to its caller but may suspend at any child dispatch that blocks
// on I/O; Go's runtime scheduler multiplexes other goroutines meanwhile
// exactly as a fiber scheduler multiplexes other fibers, so no explicit
// yield point is needed in this package.
//
// [Worker.Spawn] starts background work (used by composite routes that fan
// out to multiple children) and is tracked so [Worker.Drain] can wait for it
// to finish during shutdown. [Worker.RunInMain] posts a closure to the
// worker's main goroutine instead of running it inline on whichever
// goroutine happens to call it — the mechanism the request-context package
// uses to hop teardown-adjacent work (stats finalization, the final log
// line) off of a background goroutine whose caller may already have moved
// on, mirroring the "destroy on a safe stack" discipline of the original
// fiber-based proxy without needing Go stacks as the literal justification.
package fiber
