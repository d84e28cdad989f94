package sskr

import (
	"bytes"
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ruteri/sskr-service/gf256"
)

// splitSecret shares secret among count participants so that any threshold of
// them can recover it. Share i is the value of a random polynomial of degree
// threshold-1 with constant term secret, evaluated byte-wise at x = i+1.
// A threshold of one hands every participant a copy of the secret.
func splitSecret(rng io.Reader, threshold, count int, secret []byte) ([][]byte, error) {
	if threshold < 1 || threshold > count || count > MaxShardCount {
		return nil, ErrInvalidMemberThreshold
	}

	shares := make([][]byte, count)
	if threshold == 1 {
		for i := range shares {
			shares[i] = bytes.Clone(secret)
		}
		return shares, nil
	}

	n := len(secret)
	coefficients := make([]byte, (threshold-1)*n)
	defer wipeBytes(coefficients)
	if _, err := io.ReadFull(rng, coefficients); err != nil {
		return nil, fmt.Errorf("sskr: failed to read random coefficients: %w", err)
	}

	for i := range shares {
		x := byte(i + 1)
		y := make([]byte, n)
		for k := 0; k < n; k++ {
			var acc byte
			for d := threshold - 2; d >= 0; d-- {
				acc = gf256.Add(gf256.Mul(acc, x), coefficients[d*n+k])
			}
			y[k] = gf256.Add(gf256.Mul(acc, x), secret[k])
		}
		shares[i] = y
	}

	return shares, nil
}

// recoverSecret interpolates the secret from shares taken at the zero-based
// indices. All indices must be distinct; only the first threshold shares take
// part in the interpolation.
func recoverSecret(threshold int, indices []int, values [][]byte) ([]byte, error) {
	if len(indices) != len(values) {
		return nil, ErrInvalidShardSet
	}

	seen := mapset.NewThreadUnsafeSetWithSize[int](len(indices))
	for _, index := range indices {
		if !seen.Add(index) {
			return nil, ErrDuplicateMemberIndex
		}
	}

	if threshold < 1 || len(values) < threshold {
		return nil, ErrNotEnoughMemberShards
	}

	n := len(values[0])
	for _, v := range values[1:] {
		if len(v) != n {
			return nil, ErrInvalidShardSet
		}
	}

	if threshold == 1 {
		return bytes.Clone(values[0]), nil
	}

	secret := make([]byte, n)
	for i := 0; i < threshold; i++ {
		xi := byte(indices[i] + 1)

		// Lagrange basis polynomial for share i evaluated at zero.
		basis := byte(1)
		for j := 0; j < threshold; j++ {
			if j == i {
				continue
			}
			xj := byte(indices[j] + 1)
			basis = gf256.Mul(basis, gf256.Div(xj, gf256.Add(xi, xj)))
		}

		for k := 0; k < n; k++ {
			secret[k] = gf256.Add(secret[k], gf256.Mul(values[i][k], basis))
		}
	}

	return secret, nil
}

func wipeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
