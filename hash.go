// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

import "hash/fnv"

// HashKey returns the FNV-1a hash of key. A nonzero seed's eight
// little-endian bytes are hashed ahead of key; a zero seed yields plain
// FNV-1a of key. [route.Hash] and [route.Shadow] both use this so that config
// consistency holds: the same (seed, key) pair always lands in the same
// bucket / gate, regardless of which composite is asking.
func HashKey(key []byte, seed uint64) uint64 {
	h := fnv.New64a()
	if seed != 0 {
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(seed >> (8 * i))
		}
		h.Write(buf[:])
	}
	h.Write(key)
	return h.Sum64()
}
