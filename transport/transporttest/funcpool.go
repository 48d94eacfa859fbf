//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package transporttest provides test doubles for the transport package,
// letting route package tests exercise destination dispatch without a real
// memcached server.
package transporttest

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/transport"
)

// FuncPool is a [transport.Pool] whose behavior is entirely defined by the
// SendFunc closure. The zero value returns [transport.ErrNotConnected] for
// every call, matching a freshly constructed, never-dialed pool.
type FuncPool struct {
	// SendFunc, when set, implements Send.
	SendFunc func(ctx context.Context, req mcroute.Request, op mcroute.Op) (mcroute.Reply, error)
}

var _ transport.Pool = &FuncPool{}

// Send implements [transport.Pool].
func (p *FuncPool) Send(ctx context.Context, req mcroute.Request, op mcroute.Op) (mcroute.Reply, error) {
	if p.SendFunc != nil {
		return p.SendFunc(ctx, req, op)
	}
	return mcroute.Reply{}, transport.ErrNotConnected
}
