package sskr

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// TagSSKRShard is the CBOR tag assigned to a serialized shard.
const TagSSKRShard = 309

// EncodeCBOR wraps the serialized shard in a tagged CBOR byte string.
func (s Shard) EncodeCBOR() ([]byte, error) {
	data, err := s.Encode()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(cbor.Tag{Number: TagSSKRShard, Content: data})
}

// DecodeCBOR parses a tagged CBOR shard produced by EncodeCBOR.
func DecodeCBOR(data []byte) (Shard, error) {
	var raw cbor.RawTag
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return Shard{}, fmt.Errorf("%w: invalid cbor envelope: %v", ErrInvalidShardBuffer, err)
	}
	if raw.Number != TagSSKRShard {
		return Shard{}, fmt.Errorf("%w: unexpected cbor tag %d", ErrInvalidShardBuffer, raw.Number)
	}
	var payload []byte
	if err := cbor.Unmarshal(raw.Content, &payload); err != nil {
		return Shard{}, fmt.Errorf("%w: invalid cbor shard payload: %v", ErrInvalidShardBuffer, err)
	}
	return DecodeShard(payload)
}
