// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKeyIsDeterministic(t *testing.T) {
	a := HashKey([]byte("user:123"), 7)
	b := HashKey([]byte("user:123"), 7)
	assert.Equal(t, a, b)
}

func TestHashKeySeedChangesResult(t *testing.T) {
	a := HashKey([]byte("user:123"), 7)
	b := HashKey([]byte("user:123"), 42)
	assert.NotEqual(t, a, b)
}

func TestHashKeyDifferentKeysUsuallyDiffer(t *testing.T) {
	a := HashKey([]byte("user:123"), 0)
	b := HashKey([]byte("user:456"), 0)
	assert.NotEqual(t, a, b)
}

func TestHashKeyZeroSeedMatchesUnsaltedFNV(t *testing.T) {
	// seed == 0 hashes the key alone, documented behavior callers may rely
	// on when config omits HashSeed.
	h := fnv.New64a()
	h.Write([]byte("k"))
	assert.Equal(t, h.Sum64(), HashKey([]byte("k"), 0))
}
