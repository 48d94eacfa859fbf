// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFailoverErrorsSettings(t *testing.T) {
	s := DefaultFailoverErrorsSettings()

	tests := []struct {
		op   Op
		code ResultCode
		want bool
	}{
		{OpGet, ConnectError, true},
		{OpGet, Timeout, true},
		{OpGet, NotFound, false},
		{OpSet, LocalError, true},
		{OpSet, Stored, false},
		{OpDelete, TKO, true},
		{OpDelete, Deleted, false},
		{OpGet, Aborted, true},
	}
	for _, tt := range tests {
		got := s.ShouldFailover(NewReply(tt.code), tt.op)
		assert.Equal(t, tt.want, got, "op=%s code=%s", tt.op, tt.code)
	}
}

func TestNewFailoverErrorsSettingsPerFamily(t *testing.T) {
	s := NewFailoverErrorsSettings(
		[]ResultCode{ConnectError},
		[]ResultCode{LocalError},
		[]ResultCode{Timeout},
	)

	assert.True(t, s.ShouldFailover(NewReply(ConnectError), OpGet))
	assert.False(t, s.ShouldFailover(NewReply(LocalError), OpGet))

	assert.True(t, s.ShouldFailover(NewReply(LocalError), OpSet))
	assert.False(t, s.ShouldFailover(NewReply(ConnectError), OpSet))

	assert.True(t, s.ShouldFailover(NewReply(Timeout), OpDelete))
	assert.False(t, s.ShouldFailover(NewReply(LocalError), OpDelete))
}

func TestFailoverErrorsSettingsNeverFailoversOnHit(t *testing.T) {
	s := DefaultFailoverErrorsSettings()
	assert.False(t, s.ShouldFailover(NewReply(Found), OpGet))
	assert.False(t, s.ShouldFailover(NewReply(Stored), OpSet))
}
