package sskr

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShard_CBORRoundTrip(t *testing.T) {
	s := testShard(18)
	data, err := s.EncodeCBOR()
	require.NoError(t, err)

	// tag 309 is encoded as 0xd9 0x01 0x35
	assert.Equal(t, []byte{0xd9, 0x01, 0x35}, data[:3])

	decoded, err := DecodeCBOR(data)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestDecodeCBOR_Invalid(t *testing.T) {
	_, err := DecodeCBOR([]byte{0xff})
	assert.ErrorIs(t, err, ErrInvalidShardBuffer)

	wrongTag, err := cbor.Marshal(cbor.Tag{Number: 40300, Content: []byte{1, 2, 3}})
	require.NoError(t, err)
	_, err = DecodeCBOR(wrongTag)
	assert.ErrorIs(t, err, ErrInvalidShardBuffer)
	assert.ErrorContains(t, err, "unexpected cbor tag")

	notBytes, err := cbor.Marshal(cbor.Tag{Number: TagSSKRShard, Content: "text"})
	require.NoError(t, err)
	_, err = DecodeCBOR(notBytes)
	assert.ErrorIs(t, err, ErrInvalidShardBuffer)
	assert.ErrorContains(t, err, "invalid cbor shard payload")

	truncated, err := cbor.Marshal(cbor.Tag{Number: TagSSKRShard, Content: make([]byte, 10)})
	require.NoError(t, err)
	_, err = DecodeCBOR(truncated)
	assert.ErrorIs(t, err, ErrNotEnoughSerializedBytes)
}
