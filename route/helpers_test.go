// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"testing"

	"github.com/mcrouter-go/mcrouter"
	"github.com/mcrouter-go/mcrouter/fiber"
	"github.com/mcrouter-go/mcrouter/reqctx"
)

func newTestWorker(t *testing.T) *fiber.Worker {
	t.Helper()
	w := fiber.NewWorker()
	t.Cleanup(w.Shutdown)
	return w
}

func newNormalContext(t *testing.T, worker *fiber.Worker) *reqctx.Context {
	t.Helper()
	return reqctx.New(worker, mcroute.NewRequest([]byte("k")),
		func(mcroute.Reply) {}, func() {}, mcroute.PriorityNormal)
}

func reqctxNewRecording(worker *fiber.Worker, dest reqctx.DestinationVisitor) *reqctx.Context {
	return reqctx.NewRecording(worker, dest, nil)
}
