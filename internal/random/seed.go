// Package random provides seeded randomness for match setup.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator seeded by seedFn. The seed is returned so a match
// can log it and replay its shuffle.
func NewRand(seedFn func() (int64, error)) (*rand.Rand, int64, error) {
	if seedFn == nil {
		seedFn = NewSeed
	}
	seed, err := seedFn()
	if err != nil {
		return nil, 0, err
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}
