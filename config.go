// SPDX-License-Identifier: GPL-3.0-or-later

package mcroute

import "time"

// Config holds process-wide defaults shared by every component that needs
// them. Pass this to constructor functions to pre-wire dependencies. All
// fields have sensible defaults set by [NewConfig].
type Config struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// HashSeed salts the FNV-1a key hashing of [route.Hash] and
	// [route.Shadow]: when nonzero, its eight little-endian bytes are hashed
	// ahead of the key (see [HashKey]). Configurable so tests
	// can pin specific key-to-bucket outcomes.
	//
	// Set by [NewConfig] to 0.
	HashSeed uint64
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier: DefaultErrClassifier,
		TimeNow:       time.Now,
		HashSeed:      0,
	}
}
