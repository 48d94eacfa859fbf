// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"
	"sort"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// FreshnessSource ranks a [Latest] route's children by freshness: lower
// Rank means fresher. A typical implementation tracks each pool's replication
// lag and re-ranks as it changes.
type FreshnessSource interface {
	Rank(poolIndex int) int
}

// Latest reorders its children by [FreshnessSource.Rank] (freshest first)
// and delegates to a [Failover] over the reordered list, so a read tries
// the freshest replica first and falls back to staler ones only on error.
type Latest struct {
	name     string
	children []Handle
	fresh    FreshnessSource
	settings *mcroute.FailoverErrorsSettings
}

var _ Handle = &Latest{}

// NewLatest returns a [Handle] trying children freshest-first, as ranked
// by fresh, falling back through the rest exactly like [Failover]. An
// empty children list collapses to [Null].
func NewLatest(name string, children []Handle, fresh FreshnessSource, settings *mcroute.FailoverErrorsSettings) Handle {
	if len(children) == 0 {
		return NewNull()
	}
	if settings == nil {
		settings = mcroute.DefaultFailoverErrorsSettings()
	}
	return &Latest{name: name, children: children, fresh: fresh, settings: settings}
}

func (l *Latest) ordered() []Handle {
	idx := make([]int, len(l.children))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return l.fresh.Rank(idx[i]) < l.fresh.Rank(idx[j])
	})
	out := make([]Handle, len(idx))
	for i, pos := range idx {
		out[i] = l.children[pos]
	}
	return out
}

// Route implements [Handle].
func (l *Latest) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	fo := &Failover{name: l.name, children: l.ordered(), settings: l.settings}
	return fo.Route(ctx, rc, req, op)
}

// Traverse implements [Handle]. In recording mode this records the
// sharding strategy once, then traverses children in freshness order.
func (l *Latest) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	if rc != nil && rc.Mode() == reqctx.ModeRecording {
		rc.RecordShardSplitter(mcroute.ShardSplitterDescription{Name: "latest"})
	}
	for _, child := range l.ordered() {
		child.Traverse(ctx, rc, req, op, visit)
	}
}

// Name implements [Handle].
func (l *Latest) Name() string {
	return l.name
}
