// SPDX-License-Identifier: GPL-3.0-or-later

package routeconfig

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/route"
	"github.com/mcrouter-go/mcrouter/route/routetest"
	"github.com/mcrouter-go/mcrouter/transport"
	"github.com/mcrouter-go/mcrouter/transport/transporttest"
)

func noPoolRegistry() PoolRegistry {
	return PoolRegistryFunc(func(string, int) (transport.Pool, string, bool) {
		return nil, "", false
	})
}

func TestFactoryDestinationNode(t *testing.T) {
	pool := &transporttest.FuncPool{}
	reg := PoolRegistryFunc(func(name string, index int) (transport.Pool, string, bool) {
		if name == "a" && index == 0 {
			return pool, "tcp", true
		}
		return nil, "", false
	})

	f := NewFactory(mcroute.NewConfig(), reg, routetest.SyncScheduler{})
	raw := json.RawMessage(`{"type":"destination","pool":"a","index":0}`)

	h, err := f.Build(raw)
	require.NoError(t, err)
	assert.Equal(t, "a[0]", h.Name())
}

func TestFactoryUnknownPoolBecomesError(t *testing.T) {
	f := NewFactory(mcroute.NewConfig(), noPoolRegistry(), routetest.SyncScheduler{})
	raw := json.RawMessage(`{"type":"destination","pool":"missing","index":0}`)

	h, err := f.Build(raw)
	require.NoError(t, err)
	_, ok := h.(route.Error)
	assert.True(t, ok)
}

func TestFactoryBareArrayIsFailover(t *testing.T) {
	f := NewFactory(mcroute.NewConfig(), noPoolRegistry(), routetest.SyncScheduler{})

	raw := json.RawMessage(`[]`)
	h, err := f.Build(raw)
	require.NoError(t, err)
	_, ok := h.(route.Null)
	assert.True(t, ok)
}

func TestFactoryInvalidJSONErrors(t *testing.T) {
	f := NewFactory(mcroute.NewConfig(), noPoolRegistry(), routetest.SyncScheduler{})

	_, err := f.Build(json.RawMessage(`{not json`))
	assert.Error(t, err)
}

func TestFactorySnapshotRoot(t *testing.T) {
	f := NewFactory(mcroute.NewConfig(), noPoolRegistry(), routetest.SyncScheduler{})

	snap, err := f.BuildSnapshot(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, snap.Root())
}

func TestFactoryNestedFailoverAndHash(t *testing.T) {
	poolA := &transporttest.FuncPool{SendFunc: func(_ context.Context, _ mcroute.Request, _ mcroute.Op) (mcroute.Reply, error) {
		return mcroute.NewReply(mcroute.Found), nil
	}}
	reg := PoolRegistryFunc(func(name string, index int) (transport.Pool, string, bool) {
		return poolA, "tcp", true
	})

	f := NewFactory(mcroute.NewConfig(), reg, routetest.SyncScheduler{})
	raw := json.RawMessage(`{
		"type": "hash",
		"children": [
			{"type": "destination", "pool": "a", "index": 0},
			{"type": "failover", "children": [
				{"type": "destination", "pool": "a", "index": 1},
				{"type": "destination", "pool": "a", "index": 2}
			]}
		]
	}`)

	h, err := f.Build(raw)
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestFactoryShadowNode(t *testing.T) {
	poolA := &transporttest.FuncPool{SendFunc: func(_ context.Context, _ mcroute.Request, _ mcroute.Op) (mcroute.Reply, error) {
		return mcroute.NewReply(mcroute.Found), nil
	}}
	reg := PoolRegistryFunc(func(name string, index int) (transport.Pool, string, bool) {
		return poolA, "tcp", true
	})

	f := NewFactory(mcroute.NewConfig(), reg, routetest.SyncScheduler{})
	raw := json.RawMessage(`{
		"type": "shadow",
		"normal": {"type": "destination", "pool": "a", "index": 0},
		"shadows": [
			{
				"target": {"type": "destination", "pool": "a", "index": 1},
				"key_fraction_range": [0, 1]
			}
		]
	}`)

	h, err := f.Build(raw)
	require.NoError(t, err)
	_, ok := h.(*route.Shadow)
	assert.True(t, ok)
}

func TestFactoryShadowNodeWithoutShadowsCollapsesToNormal(t *testing.T) {
	poolA := &transporttest.FuncPool{}
	reg := PoolRegistryFunc(func(name string, index int) (transport.Pool, string, bool) {
		return poolA, "tcp", true
	})

	f := NewFactory(mcroute.NewConfig(), reg, routetest.SyncScheduler{})
	raw := json.RawMessage(`{
		"type": "shadow",
		"normal": {"type": "destination", "pool": "a", "index": 0},
		"shadows": []
	}`)

	h, err := f.Build(raw)
	require.NoError(t, err)
	assert.Equal(t, "a[0]", h.Name())
}

func TestKeyFractionRangeToHashRangeFullMirrorDoesNotOverflow(t *testing.T) {
	lo, hi := keyFractionRangeToHashRange([]float64{0, 1})
	assert.Equal(t, uint64(0), lo)
	assert.Equal(t, ^uint64(0), hi)
}

func TestKeyFractionRangeToHashRangePartial(t *testing.T) {
	lo, hi := keyFractionRangeToHashRange([]float64{0, 0.5})
	assert.Equal(t, uint64(0), lo)
	assert.True(t, hi > 0 && hi < ^uint64(0))
}

func TestKeyFractionRangeToHashRangeWrongLengthIsZero(t *testing.T) {
	lo, hi := keyFractionRangeToHashRange([]float64{0.5})
	assert.Equal(t, uint64(0), lo)
	assert.Equal(t, uint64(0), hi)
}
