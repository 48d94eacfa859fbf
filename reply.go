// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

// ResultCode is a closed enumeration of memcached-protocol-level and
// transport-level outcomes. Every [Reply] carries exactly one ResultCode.
type ResultCode int

const (
	// Found is a read hit.
	Found ResultCode = iota
	// NotFound is a read miss.
	NotFound
	// Stored is a successful write.
	Stored
	// NotStored is an application-level write rejection (e.g. add on an
	// existing key, or a destination that cannot store anything).
	NotStored
	// Exists is returned by cas when the token is stale.
	Exists
	// Deleted is a successful delete.
	Deleted
	// RemoteError means the upstream replied with a protocol-level error.
	RemoteError
	// LocalError means this process failed before/without contacting an
	// upstream (e.g. a misconfigured route).
	LocalError
	// ConnectError means the transport pool could not reach the upstream.
	ConnectError
	// ConnectTimeout means connection establishment timed out.
	ConnectTimeout
	// Timeout means the request itself timed out after connecting.
	Timeout
	// TKO ("technically knocked out") marks an upstream the pool has
	// temporarily given up on.
	TKO
	// Busy means the upstream is overloaded and rejected the request.
	Busy
	// TryAgain asks the caller to retry the same request later.
	TryAgain
	// BadKey means the key violates the protocol's key constraints.
	BadKey
	// Aborted means the request was abandoned (e.g. on worker shutdown).
	Aborted
)

var resultCodeNames = [...]string{
	Found:          "found",
	NotFound:       "notfound",
	Stored:         "stored",
	NotStored:      "notstored",
	Exists:         "exists",
	Deleted:        "deleted",
	RemoteError:    "remote_error",
	LocalError:     "local_error",
	ConnectError:   "connect_error",
	ConnectTimeout: "connect_timeout",
	Timeout:        "timeout",
	TKO:            "tko",
	Busy:           "busy",
	TryAgain:       "try_again",
	BadKey:         "bad_key",
	Aborted:        "aborted",
}

// String implements [fmt.Stringer].
func (c ResultCode) String() string {
	if int(c) >= 0 && int(c) < len(resultCodeNames) && resultCodeNames[c] != "" {
		return resultCodeNames[c]
	}
	return "unknown"
}

// IsHit reports whether c represents a successful read.
func (c ResultCode) IsHit() bool {
	return c == Found
}

// IsMiss reports whether c represents an application-level negative that is
// not an error: a miss, or a write rejected by application logic.
func (c ResultCode) IsMiss() bool {
	switch c {
	case NotFound, NotStored, Exists:
		return true
	default:
		return false
	}
}

// IsSoftError reports whether c is a retryable/failoverable error: a
// connect/network failure or a local/transient condition.
func (c ResultCode) IsSoftError() bool {
	switch c {
	case RemoteError, LocalError, ConnectError, ConnectTimeout, Timeout, TKO, Busy, TryAgain, Aborted:
		return true
	default:
		return false
	}
}

// IsHardError reports whether c is a fatal, non-failoverable protocol error.
func (c ResultCode) IsHardError() bool {
	switch c {
	case BadKey:
		return true
	default:
		return false
	}
}

// severity ranks result codes for [route.AllSync]'s "return the worst
// reply" rule: hard-error > soft-error > miss > hit. Higher is worse.
func (c ResultCode) severity() int {
	switch {
	case c.IsHardError():
		return 3
	case c.IsSoftError():
		return 2
	case c.IsMiss():
		return 1
	default:
		return 0
	}
}

// Worse reports whether c is strictly worse than other under the
// hard-error > soft-error > miss > hit ranking used by [route.AllSync].
func (c ResultCode) Worse(other ResultCode) bool {
	return c.severity() > other.severity()
}

// Reply is an immutable value describing the outcome of one memcached
// operation, returned by exactly one [Handle.Route] call per request.
type Reply struct {
	// Result is the outcome of the operation.
	Result ResultCode

	// Value is the optional payload for read hits.
	Value []byte

	// Flags are opaque flags returned alongside a hit.
	Flags uint32

	// Cas is the compare-and-swap token returned alongside a hit.
	Cas uint64

	// Message carries a human-readable detail for error results (set by
	// [route.Error] and classified transport failures).
	Message string
}

// NewReply returns a [Reply] with the given result code and no payload.
func NewReply(result ResultCode) Reply {
	return Reply{Result: result}
}

// NewErrorReply returns a [Reply] with the given result code and message.
func NewErrorReply(result ResultCode, message string) Reply {
	return Reply{Result: result, Message: message}
}
