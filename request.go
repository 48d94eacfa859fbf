// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

// Request is an immutable value describing one memcached operation.
//
// Request has value semantics deliberately: a [Request] is never pointed to
// across goroutine boundaries, so concurrent fan-out children can share one
// Request value without synchronization. Key rewriting (e.g. by a key-
// prefixing decorator) produces a new Request via [Request.WithKey]; it
// never mutates the receiver.
type Request struct {
	// Key is the cache key this request targets.
	Key []byte

	// Value is the optional payload for write operations.
	Value []byte

	// Flags are opaque client flags, round-tripped unchanged.
	Flags uint32

	// ExptimeSeconds is the expiry in seconds, as sent by the client
	// (0 means "never expires" for most operations).
	ExptimeSeconds int64

	// Cas is the compare-and-swap token for [OpCas]; ignored otherwise.
	Cas uint64
}

// NewRequest returns a read [Request] for the given key.
func NewRequest(key []byte) Request {
	return Request{Key: key}
}

// WithKey returns a copy of the request with Key replaced. The receiver is
// never mutated.
func (r Request) WithKey(key []byte) Request {
	r.Key = key
	return r
}

// WithValue returns a copy of the request with Value replaced. The receiver
// is never mutated.
func (r Request) WithValue(value []byte) Request {
	r.Value = value
	return r
}
