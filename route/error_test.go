// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcrouter-go/mcrouter"
)

func TestErrorRoute(t *testing.T) {
	e := NewError("unknown pool \"foo\"")

	reply := e.Route(context.Background(), nil, mcroute.NewRequest([]byte("k")), mcroute.OpGet)
	assert.Equal(t, mcroute.LocalError, reply.Result)
	assert.Equal(t, "unknown pool \"foo\"", reply.Message)
	assert.Equal(t, "error", e.Name())
}
