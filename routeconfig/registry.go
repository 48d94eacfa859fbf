// SPDX-License-Identifier: GPL-3.0-or-later

package routeconfig

import "github.com/mcrouter-go/mcrouter/transport"

// PoolRegistry resolves a named pool and server index, as written in a
// `PoolRoute`/`DestinationRoute` JSON node, to the [transport.Pool] that
// should handle traffic for it. How pools are discovered and connected is
// out of scope for this package (and for the routing core in general); the
// registry is the seam a caller plugs a real implementation into.
type PoolRegistry interface {
	// Pool returns the transport.Pool serving server index within the
	// named pool, and the network family ("tcp", "udp", or "unix") it
	// communicates over. ok is false if name/index do not resolve to a
	// configured destination.
	Pool(name string, index int) (pool transport.Pool, family string, ok bool)
}

// PoolRegistryFunc adapts a function to the [PoolRegistry] interface.
type PoolRegistryFunc func(name string, index int) (transport.Pool, string, bool)

var _ PoolRegistry = PoolRegistryFunc(nil)

// Pool implements [PoolRegistry].
func (f PoolRegistryFunc) Pool(name string, index int) (transport.Pool, string, bool) {
	return f(name, index)
}
