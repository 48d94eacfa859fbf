// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

// FailoverErrorsSettings classifies, per [OpFamily], which [ResultCode]
// values should trigger [route.Failover] (and [route.Latest], which
// delegates to it) to advance to the next child.
//
// The zero value is not ready to use; construct one with
// [NewFailoverErrorsSettings] or [DefaultFailoverErrorsSettings].
type FailoverErrorsSettings struct {
	gets    map[ResultCode]struct{}
	updates map[ResultCode]struct{}
	deletes map[ResultCode]struct{}
}

// defaultFailoverCodes are the result codes that trigger failover unless a
// [FailoverErrorsSettings] overrides them: every connect/local/remote error
// and timeout. Hits, misses, and application-level negatives never trigger
// failover.
var defaultFailoverCodes = []ResultCode{
	RemoteError, LocalError, ConnectError, ConnectTimeout, Timeout, TKO, Busy, TryAgain, Aborted,
}

// DefaultFailoverErrorsSettings returns the settings used when a
// [route.Failover] is built without an explicit classifier: identical
// allow-lists for gets, updates, and deletes, populated from
// [defaultFailoverCodes].
func DefaultFailoverErrorsSettings() *FailoverErrorsSettings {
	return NewFailoverErrorsSettings(defaultFailoverCodes, defaultFailoverCodes, defaultFailoverCodes)
}

// NewFailoverErrorsSettings builds a [*FailoverErrorsSettings] from three
// explicit allow-lists, one per [OpFamily].
func NewFailoverErrorsSettings(gets, updates, deletes []ResultCode) *FailoverErrorsSettings {
	return &FailoverErrorsSettings{
		gets:    toSet(gets),
		updates: toSet(updates),
		deletes: toSet(deletes),
	}
}

func toSet(codes []ResultCode) map[ResultCode]struct{} {
	out := make(map[ResultCode]struct{}, len(codes))
	for _, c := range codes {
		out[c] = struct{}{}
	}
	return out
}

// ShouldFailover selects the allow-list for op's [OpFamily] and reports
// whether reply's result code belongs to it.
func (s *FailoverErrorsSettings) ShouldFailover(reply Reply, op Op) bool {
	var set map[ResultCode]struct{}
	switch op.Family() {
	case OpFamilyRead:
		set = s.gets
	case OpFamilyDelete:
		set = s.deletes
	default:
		set = s.updates
	}
	_, ok := set[reply.Result]
	return ok
}
