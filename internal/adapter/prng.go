// Package adapter provides the collaborators the scope runtime depends on:
// the deterministic key generator, the array engine, tree persistence and
// the interactive tree browser.
package adapter

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/rand"
)

// KeySize is the width of a PRNG key in bytes.
const KeySize = 32

// Key is a fixed-width key for the splittable, foldable random bit
// generator. Keys are values; every derivation returns a new key.
type Key [KeySize]byte

// Domain-separation prefixes so that folding a string, folding a counter
// and splitting can never produce colliding derivations.
const (
	foldTokenTag byte = 0x01
	foldCountTag byte = 0x02
	splitTag     byte = 0x03
)

// NewKey derives a key from an integer seed.
func NewKey(seed uint64) Key {
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], seed)

	return sha256.Sum256(buf[:])
}

// Fold deterministically combines a key with a string token, producing a
// new key that is unpredictable but reproducible.
func Fold(k Key, token string) Key {
	h := sha256.New()
	h.Write(k[:])
	h.Write([]byte{foldTokenTag})
	h.Write([]byte(token))

	var out Key

	copy(out[:], h.Sum(nil))

	return out
}

// FoldCount folds an ordinal counter into a key. It is domain-separated
// from Fold so FoldCount(k, 1) never equals Fold(k, "1").
func FoldCount(k Key, count uint64) Key {
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], count)

	h := sha256.New()
	h.Write(k[:])
	h.Write([]byte{foldCountTag})
	h.Write(buf[:])

	var out Key

	copy(out[:], h.Sum(nil))

	return out
}

// Split derives num independent keys from k. A split key must not be
// folded further; the scope runtime never splits keys it owns.
func Split(k Key, num int) []Key {
	keys := make([]Key, num)

	for i := range keys {
		var buf [8]byte

		binary.BigEndian.PutUint64(buf[:], uint64(i))

		h := sha256.New()
		h.Write(k[:])
		h.Write([]byte{splitTag})
		h.Write(buf[:])
		copy(keys[i][:], h.Sum(nil))
	}

	return keys
}

// Source returns a deterministic sample stream seeded from the key, for
// initializers that draw random values.
func Source(k Key) *rand.Rand {
	seed := int64(binary.BigEndian.Uint64(k[:8]))

	//nolint:gosec // Reproducibility is the point; this is not a crypto stream.
	return rand.New(rand.NewSource(seed))
}

// String renders a short hex prefix of the key for logs.
func (k Key) String() string {
	return hex.EncodeToString(k[:4])
}
