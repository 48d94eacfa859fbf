// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"
	"errors"
	"time"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
	"github.com/mcrouter-go/mcrouter/transport"
)

// Destination is a terminal routing-tree node forwarding to a single
// [transport.Pool]. It is the only [Handle] that performs real I/O; every
// composite handle ultimately dispatches down to one or more Destinations.
type Destination struct {
	name string

	poolName string
	family   string
	index    int

	transport transport.Pool
}

var _ Handle = &Destination{}

// NewDestination returns a [*Destination] forwarding to pool. name is used
// for [Handle.Name]; poolName/family/index populate the
// [mcroute.DestinationDescription] surfaced during a recording traversal.
func NewDestination(name string, pool transport.Pool, poolName, family string, index int) *Destination {
	return &Destination{
		name:      name,
		poolName:  poolName,
		family:    family,
		index:     index,
		transport: pool,
	}
}

// Route implements [Handle]. A [transport.ErrNotConnected] error from the
// pool is turned into an [mcroute.ConnectError] reply rather than
// propagated, since [Handle.Route] never returns an error. In recording
// mode Route records the destination and returns the [Null] reply for op
// without calling the pool.
func (d *Destination) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	if rc != nil && rc.Mode() == reqctx.ModeRecording {
		rc.RecordDestination(mcroute.DestinationDescription{
			PoolName:      d.poolName,
			AddressFamily: d.family,
			ServerIndex:   d.index,
		})
		return Null{}.Route(ctx, rc, req, op)
	}

	start := time.Now()

	reply, err := d.transport.Send(ctx, req, op)
	if err != nil {
		if errors.Is(err, transport.ErrNotConnected) {
			reply = mcroute.NewErrorReply(mcroute.ConnectError, err.Error())
		} else {
			reply = mcroute.NewErrorReply(mcroute.LocalError, err.Error())
		}
	}

	if rc != nil {
		rc.OnReplyReceived(mcroute.ClientDescription{IP: rc.UserIP()}, req, reply, start, time.Now(), op)
	}
	return reply
}

// Traverse implements [Handle]. In recording mode this records the
// destination instead of dispatching; in normal mode it invokes visit.
func (d *Destination) Traverse(_ context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	if rc != nil && rc.Mode() == reqctx.ModeRecording {
		rc.RecordDestination(mcroute.DestinationDescription{
			PoolName:      d.poolName,
			AddressFamily: d.family,
			ServerIndex:   d.index,
		})
		return
	}
	if visit != nil {
		visit(d, req, op)
	}
}

// Name implements [Handle].
func (d *Destination) Name() string {
	return d.name
}
