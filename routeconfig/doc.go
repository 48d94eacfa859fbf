//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package routeconfig decodes a JSON routing-tree description into a tree
// of [route.Handle] values. It is the boundary between the on-disk
// configuration format and the in-memory routing core: once
// [Factory.Build] returns, the resulting [*Snapshot] is immutable and safe
// to share across any number of concurrent [reqctx.Context] values.
package routeconfig
