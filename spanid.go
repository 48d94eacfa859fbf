// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way: one destination dispatch, one shadow dispatch, or the client-visible
// reply to one request. Use a span ID to correlate a destination dispatch,
// its background shadows, and the final reply across structured log lines.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
