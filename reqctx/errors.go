// SPDX-License-Identifier: GPL-3.0-or-later

package reqctx

import "errors"

// ErrAlreadyProcessed is returned by [Context.Process] when called more
// than once on the same context.
var ErrAlreadyProcessed = errors.New("reqctx: context already processed")

// ErrNotAvailable is returned by accessors that depend on a configuration
// snapshot (e.g. [Context.ProxyRoute], [Context.ProxyConfig]) when no
// snapshot is attached: the context is in recording mode, or
// [Context.Process] has not been called yet.
var ErrNotAvailable = errors.New("reqctx: configuration snapshot not available")
