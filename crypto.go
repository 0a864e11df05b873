package main

import (
	"fmt"

	"github.com/tink-crypto/tink-go/v2/subtle/random"

	"cryptokit/internal/cbc"
	"cryptokit/internal/lehmer"
	"cryptokit/internal/rc5"
)

// deriveSchedule expands the MD5-derived RC5 key for passphrase.
func deriveSchedule(passphrase []byte, rounds int) (*rc5.Schedule, error) {
	key, err := rc5.KeyFromPassphrase(passphrase)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(key)

	schedule, err := rc5.NewSchedule(key, rounds)
	if err != nil {
		return nil, fmt.Errorf("failed to expand key: %w", err)
	}
	return schedule, nil
}

// newIV returns a CBC initialization vector. The IV travels encrypted in the
// stream header, so the clock-seeded generator is the default and secure
// selects a CSPRNG.
func newIV(secure bool) []byte {
	if secure {
		return random.GetRandomBytes(cbc.BlockSize)
	}
	return lehmer.NewTimeSource().IV16()
}
