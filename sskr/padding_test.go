package sskr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadSecret(t *testing.T) {
	for n := 14; n < MaxSecretLength; n++ {
		secret := make([]byte, n)
		for i := range secret {
			secret[i] = byte(0xf0 + i%16)
		}

		padded, err := PadSecret(secret)
		require.NoError(t, err, "Should pad %d byte secret", n)
		require.NoError(t, ValidateSecret(padded), "Padded %d byte secret should be splittable", n)

		unpadded, err := UnpadSecret(padded)
		require.NoError(t, err)
		assert.Equal(t, secret, unpadded)
	}

	_, err := PadSecret(make([]byte, 13))
	assert.ErrorIs(t, err, ErrSecretTooShort)

	_, err = PadSecret(make([]byte, 32))
	assert.ErrorIs(t, err, ErrSecretTooLong)
}

func TestUnpadSecret_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		padded []byte
	}{
		{"empty", nil},
		{"odd length", []byte{1, 2, 1}},
		{"zero pad", []byte{1, 2, 3, 0}},
		{"pad too large", []byte{1, 2, 3, 3}},
		{"inconsistent pad", []byte{1, 2, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnpadSecret(tt.padded)
			assert.ErrorIs(t, err, ErrInvalidPadding)
		})
	}
}

func TestPadSecret_SplitRoundTrip(t *testing.T) {
	key := []byte("twenty-one byte key!!")
	padded, err := PadSecret(key)
	require.NoError(t, err)

	shards, err := Split(padded, 1, []GroupDescriptor{{Threshold: 2, Count: 2}})
	require.NoError(t, err)
	recovered, err := Combine(shards)
	require.NoError(t, err)

	unpadded, err := UnpadSecret(recovered)
	require.NoError(t, err)
	assert.Equal(t, key, unpadded)
}
