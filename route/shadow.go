// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"
	"sync/atomic"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/fiber"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

// ShadowPolicy customizes what a [Shadow] sends to its shadow destination
// and what it does with the shadow's reply. [DefaultShadowPolicy] mirrors
// the request unchanged and discards the shadow reply.
type ShadowPolicy interface {
	// Transform returns the request to send to the shadow destination,
	// e.g. to rewrite its key with a test prefix.
	Transform(req mcroute.Request) mcroute.Request

	// Observe is called with the shadow's reply once it arrives. It never
	// affects what the client sees.
	Observe(req mcroute.Request, shadowReply, primaryReply mcroute.Reply)
}

type defaultShadowPolicy struct{}

// DefaultShadowPolicy returns a [ShadowPolicy] that mirrors the request
// unchanged and discards the shadow reply.
func DefaultShadowPolicy() ShadowPolicy {
	return defaultShadowPolicy{}
}

func (defaultShadowPolicy) Transform(req mcroute.Request) mcroute.Request {
	return req
}

func (defaultShadowPolicy) Observe(mcroute.Request, mcroute.Reply, mcroute.Reply) {
}

// ShadowSettings is the hot-updatable gate controlling which keys a
// [Shadow] mirrors: a key is mirrored when its [mcroute.HashKey] falls in
// [Lo, Hi). The zero value mirrors nothing (Lo == Hi == 0); use
// [NewShadowSettings] to start with a specific range.
type ShadowSettings struct {
	seed  uint64
	rng   atomic.Pointer[[2]uint64]
}

// NewShadowSettings returns a [*ShadowSettings] seeded for hashing and
// gated to [lo, hi).
func NewShadowSettings(seed, lo, hi uint64) *ShadowSettings {
	s := &ShadowSettings{seed: seed}
	s.SetKeyRange(lo, hi)
	return s
}

// SetKeyRange atomically updates the mirrored key range to [lo, hi). Safe
// to call concurrently with [Shadow.Route] on any number of requests; an
// in-flight decision always observes either the old or the new range, never
// a torn mix.
func (s *ShadowSettings) SetKeyRange(lo, hi uint64) {
	rng := [2]uint64{lo, hi}
	s.rng.Store(&rng)
}

func (s *ShadowSettings) shouldMirror(key []byte) bool {
	rng := s.rng.Load()
	if rng == nil {
		return false
	}
	h := mcroute.HashKey(key, s.seed)
	return h >= rng[0] && h < rng[1]
}

// Shadow decorates a primary [Handle], mirroring traffic for keys in its
// [ShadowSettings] gate to a shadow [Handle] on a background goroutine. The
// client only ever sees the primary's reply; the shadow's reply only
// reaches [ShadowPolicy.Observe].
type Shadow struct {
	name      string
	primary   Handle
	shadow    Handle
	settings  *ShadowSettings
	policy    ShadowPolicy
	scheduler fiber.Scheduler
}

var _ Handle = &Shadow{}

// NewShadow returns a [*Shadow] wrapping primary, mirroring gated traffic
// to shadow per policy (or [DefaultShadowPolicy] if nil).
func NewShadow(name string, primary, shadow Handle, settings *ShadowSettings, policy ShadowPolicy, scheduler fiber.Scheduler) *Shadow {
	if policy == nil {
		policy = DefaultShadowPolicy()
	}
	return &Shadow{name: name, primary: primary, shadow: shadow, settings: settings, policy: policy, scheduler: scheduler}
}

// Route implements [Handle].
func (s *Shadow) Route(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op) mcroute.Reply {
	primaryReply := s.primary.Route(ctx, rc, req, op)

	if s.settings.shouldMirror(req.Key) {
		shadowReq := s.policy.Transform(req)
		spawn(rc, s.scheduler, func() {
			shadowReply := s.shadow.Route(ctx, rc, shadowReq, op)
			s.policy.Observe(shadowReq, shadowReply, primaryReply)
		})
	}
	return primaryReply
}

// Traverse implements [Handle]. Both the primary and the shadow subtrees
// are visited, since a shadow route is still reachable traffic.
func (s *Shadow) Traverse(ctx context.Context, rc *reqctx.Context, req mcroute.Request, op mcroute.Op, visit Visitor) {
	s.primary.Traverse(ctx, rc, req, op, visit)
	s.shadow.Traverse(ctx, rc, req, op, visit)
}

// Name implements [Handle].
func (s *Shadow) Name() string {
	return s.name
}
