// SPDX-License-Identifier: GPL-3.0-or-later

package routeconfig

import "github.com/mcrouter-go/mcrouter/route"

// Snapshot is an immutable, fully-built routing tree. Any number of
// [reqctx.Context] values may hold a *Snapshot concurrently; nothing about
// it changes after [Factory.Build] returns ([route.Shadow]'s key range is
// the one mutable exception, and it is updated through its own
// [route.ShadowSettings], not through the snapshot).
type Snapshot struct {
	root route.Handle
}

// Root implements [reqctx.ConfigSnapshot].
func (s *Snapshot) Root() route.Handle {
	return s.root
}
