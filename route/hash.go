// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// Hash picks exactly one child by hashing req's key with
// [mcroute.HashKey] modulo the number of children, so that the same key
// always reaches the same child for a given seed and child count. It is
// used to shard a keyspace across a pool of destinations.
type Hash struct {
	name     string
	children []Handle
	seed     uint64
}

var _ Handle = &Hash{}

// NewHash returns a [Hash] handle sharding across children using seed. An
// empty children list collapses to [Null]; a single child collapses to
// that child directly.
func NewHash(name string, children []Handle, seed uint64) Handle {
	if len(children) == 0 {
		return NewNull()
	}
	if len(children) == 1 {
		return children[0]
	}
	return &Hash{name: name, children: children, seed: seed}
}

func (h *Hash) pick(req mcroute.Request) Handle {
	idx := mcroute.HashKey(req.Key, h.seed) % uint64(len(h.children))
	return h.children[idx]
}

// Route implements [Handle].
func (h *Hash) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	return h.pick(req).Route(ctx, rc, req, op)
}

// Traverse implements [Handle]. In recording mode this records the
// sharding strategy once, then traverses only the child that req would
// reach.
func (h *Hash) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	if rc != nil && rc.Mode() == reqctx.ModeRecording {
		rc.RecordShardSplitter(mcroute.ShardSplitterDescription{Name: "hash"})
	}
	h.pick(req).Traverse(ctx, rc, req, op, visit)
}

// Name implements [Handle].
func (h *Hash) Name() string {
	return h.name
}
