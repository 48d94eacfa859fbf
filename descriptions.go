// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

import "time"

// DestinationDescription is the argument to a recording context's
// destination visitor and to [route.Visitor] calls on a [route.Destination].
// It carries enough information to reconstruct the routing decision without
// actually dispatching to the upstream.
type DestinationDescription struct {
	// PoolName is the name of the transport pool this destination routes
	// to, as configured in the JSON routing tree.
	PoolName string

	// AddressFamily is "tcp", "udp", or "unix".
	AddressFamily string

	// ServerIndex is this destination's position within its pool.
	ServerIndex int
}

// ShardSplitterDescription is the argument to a recording context's
// shard-splitter visitor. Shard-splitting route handles (e.g. a
// configuration-time sharding decorator) invoke this instead of dispatching.
type ShardSplitterDescription struct {
	// Name identifies the shard-splitting strategy (e.g. "hash", "latest").
	Name string
}

// ClientDescription identifies the client a reply is being logged for, used
// by [reqctx.Context.OnReplyReceived].
type ClientDescription struct {
	// IP is the client's address, as recorded on the [reqctx.Context].
	IP string
}

// ReplyLogger records a successfully-answered request for stats purposes.
// [reqctx.Context.OnReplyReceived] invokes the primary and every additional
// ReplyLogger exactly once per normal-mode reply.
type ReplyLogger interface {
	LogReply(client ClientDescription, req Request, reply Reply, start, end time.Time, op Op)
}

// ReplyLoggerFunc adapts a function to the [ReplyLogger] interface.
type ReplyLoggerFunc func(client ClientDescription, req Request, reply Reply, start, end time.Time, op Op)

var _ ReplyLogger = ReplyLoggerFunc(nil)

// LogReply implements [ReplyLogger].
func (f ReplyLoggerFunc) LogReply(client ClientDescription, req Request, reply Reply, start, end time.Time, op Op) {
	f(client, req, reply, start, end, op)
}
