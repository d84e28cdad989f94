package sskr

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// baseIterationCount is the total number of PBKDF2 iterations spread over
	// all Feistel rounds at iteration exponent zero.
	baseIterationCount = 10000
	roundCount         = 4
)

var customizationString = []byte("sskr")

// roundFunction is the Feistel round function: a PBKDF2-HMAC-SHA256 digest
// keyed by the round index and salted with the split identifier and the
// right half, truncated to the length of the half.
func roundFunction(round int, iterationExponent uint8, identifier uint16, r []byte) []byte {
	salt := make([]byte, 0, len(customizationString)+2+len(r))
	salt = append(salt, customizationString...)
	salt = binary.BigEndian.AppendUint16(salt, identifier)
	salt = append(salt, r...)

	iterations := (baseIterationCount << iterationExponent) / roundCount
	return pbkdf2.Key([]byte{byte(round)}, salt, iterations, len(r), sha256.New)
}

// encryptSecret runs the four Feistel rounds over the two halves of secret.
// The secret length must be even.
func encryptSecret(secret []byte, identifier uint16, iterationExponent uint8) []byte {
	return feistel(secret, identifier, iterationExponent, []int{0, 1, 2, 3})
}

// decryptSecret reverses encryptSecret.
func decryptSecret(encrypted []byte, identifier uint16, iterationExponent uint8) []byte {
	return feistel(encrypted, identifier, iterationExponent, []int{3, 2, 1, 0})
}

func feistel(data []byte, identifier uint16, iterationExponent uint8, rounds []int) []byte {
	half := len(data) / 2
	l := bytes.Clone(data[:half])
	r := bytes.Clone(data[half:])

	for _, round := range rounds {
		f := roundFunction(round, iterationExponent, identifier, r)
		for i := range l {
			l[i] ^= f[i]
		}
		wipeBytes(f)
		l, r = r, l
	}

	out := make([]byte, 0, len(data))
	out = append(out, r...)
	out = append(out, l...)
	wipeBytes(l)
	wipeBytes(r)
	return out
}
