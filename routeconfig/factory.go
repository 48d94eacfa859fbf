// SPDX-License-Identifier: GPL-3.0-or-later

package routeconfig

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/fiber"
	"github.com/mcrouter-go/mcrouter/route"
)

// Factory builds a [route.Handle] tree from its JSON description.
// Construct with [NewFactory].
type Factory struct {
	cfg       *mcroute.Config
	pools     PoolRegistry
	scheduler fiber.Scheduler
}

// NewFactory returns a [*Factory] sharing cfg's classifier/clock/hash seed
// across every constructed route, resolving pool references via pools, and
// scheduling fire-and-forget work (AllAsync/AllInitial/Shadow) via
// scheduler.
func NewFactory(cfg *mcroute.Config, pools PoolRegistry, scheduler fiber.Scheduler) *Factory {
	return &Factory{cfg: cfg, pools: pools, scheduler: scheduler}
}

// Build decodes raw into a full [route.Handle] tree. Unlike most JSON
// decoders, Build never returns an error for a bad subtree: a
// misconfigured node becomes a [route.Error] embedded at that point in the
// tree, so a single typo does not prevent every other route in the
// configuration from loading. Build does return an error if raw itself is
// not valid JSON.
func (f *Factory) Build(raw json.RawMessage) (route.Handle, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("routeconfig: invalid JSON")
	}
	return f.build(raw), nil
}

// BuildSnapshot is [Factory.Build] plus wrapping the result in a
// [*Snapshot], ready to attach to a [reqctx.Context] via
// [reqctx.Context.Process].
func (f *Factory) BuildSnapshot(raw json.RawMessage) (*Snapshot, error) {
	root, err := f.Build(raw)
	if err != nil {
		return nil, err
	}
	return &Snapshot{root: root}, nil
}

type typeTag struct {
	Type string `json:"type"`
}

type childrenNode struct {
	Children []json.RawMessage `json:"children"`
}

type failoverNode struct {
	Children       []json.RawMessage `json:"children"`
	FailoverErrors *failoverErrorsWire `json:"failover_errors"`
}

type failoverErrorsWire struct {
	Gets    []string `json:"gets"`
	Updates []string `json:"updates"`
	Deletes []string `json:"deletes"`
}

type poolNode struct {
	Pool  string `json:"pool"`
	Index int    `json:"index"`
}

type shadowTargetWire struct {
	Target           json.RawMessage `json:"target"`
	IndexRange       []int           `json:"index_range"`
	KeyFractionRange []float64       `json:"key_fraction_range"`
}

type shadowNode struct {
	Normal       json.RawMessage    `json:"normal"`
	Shadows      []shadowTargetWire `json:"shadows"`
	ShadowPolicy string             `json:"shadow_policy"`
}

// build is the error-free core of [Factory.Build]: any decode failure
// produces a [route.Error] node rather than propagating.
func (f *Factory) build(raw json.RawMessage) route.Handle {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return f.buildFailover(arr, nil)
	}

	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return route.NewError(fmt.Sprintf("routeconfig: invalid route node: %v", err))
	}

	switch tag.Type {
	case "failover":
		var n failoverNode
		if err := json.Unmarshal(raw, &n); err != nil {
			return route.NewError(fmt.Sprintf("routeconfig: invalid failover node: %v", err))
		}
		return f.buildFailover(n.Children, n.FailoverErrors)

	case "all_initial":
		children, err := f.buildChildrenNode(raw)
		if err != nil {
			return route.NewError(err.Error())
		}
		return route.NewAllInitial("all_initial", children, f.scheduler)

	case "all_sync":
		children, err := f.buildChildrenNode(raw)
		if err != nil {
			return route.NewError(err.Error())
		}
		return route.NewAllSync("all_sync", children)

	case "all_async":
		children, err := f.buildChildrenNode(raw)
		if err != nil {
			return route.NewError(err.Error())
		}
		return route.NewAllAsync("all_async", children, f.scheduler)

	case "all_majority":
		children, err := f.buildChildrenNode(raw)
		if err != nil {
			return route.NewError(err.Error())
		}
		return route.NewAllMajority("all_majority", children)

	case "hash":
		children, err := f.buildChildrenNode(raw)
		if err != nil {
			return route.NewError(err.Error())
		}
		return route.NewHash("hash", children, f.cfg.HashSeed)

	case "latest":
		children, err := f.buildChildrenNode(raw)
		if err != nil {
			return route.NewError(err.Error())
		}
		return route.NewLatest("latest", children, uniformFreshness{}, nil)

	case "shadow":
		return f.buildShadow(raw)

	case "pool", "destination":
		var n poolNode
		if err := json.Unmarshal(raw, &n); err != nil {
			return route.NewError(fmt.Sprintf("routeconfig: invalid pool node: %v", err))
		}
		return f.buildDestination(n)

	default:
		return route.NewError(fmt.Sprintf("routeconfig: unknown route type %q", tag.Type))
	}
}

func (f *Factory) buildChildrenNode(raw json.RawMessage) ([]route.Handle, error) {
	var n childrenNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("routeconfig: invalid children node: %w", err)
	}
	return f.buildAll(n.Children), nil
}

func (f *Factory) buildAll(nodes []json.RawMessage) []route.Handle {
	out := make([]route.Handle, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, f.build(node))
	}
	return out
}

func (f *Factory) buildFailover(children []json.RawMessage, wire *failoverErrorsWire) route.Handle {
	settings := decodeFailoverErrors(wire)
	return route.NewFailover("failover", f.buildAll(children), settings)
}

func (f *Factory) buildDestination(n poolNode) route.Handle {
	pool, family, ok := f.pools.Pool(n.Pool, n.Index)
	if !ok {
		return route.NewError(fmt.Sprintf("routeconfig: unknown pool %q index %d", n.Pool, n.Index))
	}
	name := fmt.Sprintf("%s[%d]", n.Pool, n.Index)
	return route.NewDestination(name, pool, n.Pool, family, n.Index)
}

func (f *Factory) buildShadow(raw json.RawMessage) route.Handle {
	var n shadowNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return route.NewError(fmt.Sprintf("routeconfig: invalid shadow node: %v", err))
	}

	normal := f.build(n.Normal)
	if len(n.Shadows) == 0 {
		return normal
	}

	policy := route.DefaultShadowPolicy()
	result := normal
	for i, target := range n.Shadows {
		lo, hi := keyFractionRangeToHashRange(target.KeyFractionRange)
		settings := route.NewShadowSettings(f.cfg.HashSeed, lo, hi)
		shadowHandle := f.build(target.Target)
		name := fmt.Sprintf("shadow[%d]", i)
		result = route.NewShadow(name, result, shadowHandle, settings, policy, f.scheduler)
	}
	return result
}

// keyFractionRangeToHashRange maps a [0,1]-normalized fraction pair onto
// the full uint64 hash space [route.Hash]/[route.Shadow] use, so JSON
// configuration can describe "mirror 5% of the keyspace" without knowing
// about hashing internals.
func keyFractionRangeToHashRange(fraction []float64) (lo, hi uint64) {
	if len(fraction) != 2 {
		return 0, 0
	}
	return fractionToHash(fraction[0]), fractionToHash(fraction[1])
}

// fractionToHash scales a [0,1]-clamped fraction onto the uint64 hash
// space. math.MaxUint64 is not exactly representable as a float64 (it
// rounds up to 2^64), so multiplying by it can overflow uint64's range for
// fraction==1.0 with an implementation-specific result; fraction>=1.0 is
// special-cased to ^uint64(0) to guarantee "mirror the whole keyspace"
// configurations behave as expected.
func fractionToHash(fraction float64) uint64 {
	if fraction >= 1.0 {
		return ^uint64(0)
	}
	if fraction <= 0.0 {
		return 0
	}
	return uint64(fraction * (math.MaxUint64 - 1))
}

func decodeFailoverErrors(wire *failoverErrorsWire) *mcroute.FailoverErrorsSettings {
	if wire == nil {
		return mcroute.DefaultFailoverErrorsSettings()
	}
	return mcroute.NewFailoverErrorsSettings(
		decodeResultCodes(wire.Gets), decodeResultCodes(wire.Updates), decodeResultCodes(wire.Deletes))
}

var resultCodesByName = map[string]mcroute.ResultCode{
	"found":           mcroute.Found,
	"notfound":        mcroute.NotFound,
	"stored":          mcroute.Stored,
	"notstored":       mcroute.NotStored,
	"exists":          mcroute.Exists,
	"deleted":         mcroute.Deleted,
	"remote_error":    mcroute.RemoteError,
	"local_error":     mcroute.LocalError,
	"connect_error":   mcroute.ConnectError,
	"connect_timeout": mcroute.ConnectTimeout,
	"timeout":         mcroute.Timeout,
	"tko":             mcroute.TKO,
	"busy":            mcroute.Busy,
	"try_again":       mcroute.TryAgain,
	"bad_key":         mcroute.BadKey,
	"aborted":         mcroute.Aborted,
}

func decodeResultCodes(names []string) []mcroute.ResultCode {
	out := make([]mcroute.ResultCode, 0, len(names))
	for _, name := range names {
		if code, ok := resultCodesByName[name]; ok {
			out = append(out, code)
		}
	}
	return out
}

// uniformFreshness ranks every pool equally, i.e. [route.Latest] behaves
// exactly like [route.Failover] until a real freshness source is wired in.
type uniformFreshness struct{}

func (uniformFreshness) Rank(int) int {
	return 0
}
