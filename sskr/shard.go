package sskr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"slices"
)

const (
	// MinSecretLength and MaxSecretLength bound the secret and share value sizes.
	MinSecretLength = 16
	MaxSecretLength = 32

	// MaxShardCount bounds both the number of groups and the members per group.
	MaxShardCount = 16

	// MetadataLength is the size of the fixed shard header.
	MetadataLength = 5
	// ChecksumLength is the size of the trailing CRC-32.
	ChecksumLength = 4

	MinSerializedLength = MetadataLength + MinSecretLength + ChecksumLength
	MaxSerializedLength = MetadataLength + MaxSecretLength + ChecksumLength
)

// Shard is one member share of a split. All shards of a split carry the same
// Identifier, GroupThreshold and GroupCount.
type Shard struct {
	Identifier uint16
	// IterationExponent is carried in the reserved header bits and must be zero.
	IterationExponent uint8

	GroupIndex     int
	GroupThreshold int
	GroupCount     int

	MemberIndex     int
	MemberThreshold int

	Value []byte
}

// String identifies the shard by split identifier and 1-based group and member numbers.
func (s Shard) String() string {
	return fmt.Sprintf("SSKRShard(%04x %d-%d)", s.Identifier, s.GroupIndex+1, s.MemberIndex+1)
}

// EncodedLen returns the number of bytes Encode produces.
func (s Shard) EncodedLen() int {
	return MetadataLength + len(s.Value) + ChecksumLength
}

// Validate checks that every field fits the wire format.
func (s Shard) Validate() error {
	if err := ValidateSecret(s.Value); err != nil {
		return err
	}
	if s.IterationExponent != 0 {
		return ErrInvalidReservedBits
	}
	if s.GroupCount < 1 || s.GroupCount > MaxShardCount || s.GroupThreshold < 1 || s.GroupThreshold > s.GroupCount {
		return ErrInvalidGroupThreshold
	}
	if s.GroupIndex < 0 || s.GroupIndex >= s.GroupCount {
		return ErrInvalidShardBuffer
	}
	if s.MemberThreshold < 1 || s.MemberThreshold > MaxShardCount {
		return ErrInvalidMemberThreshold
	}
	if s.MemberIndex < 0 || s.MemberIndex >= MaxShardCount {
		return ErrInvalidShardBuffer
	}
	return nil
}

// EncodeTo serializes the shard into dst and returns the number of bytes written.
func (s Shard) EncodeTo(dst []byte) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	n := s.EncodedLen()
	if len(dst) < n {
		return 0, ErrInsufficientSpace
	}

	binary.BigEndian.PutUint16(dst[0:2], s.Identifier)
	dst[2] = byte(s.GroupThreshold-1)<<4 | byte(s.GroupCount-1)
	dst[3] = byte(s.GroupIndex)<<4 | byte(s.MemberThreshold-1)
	dst[4] = s.IterationExponent<<4 | byte(s.MemberIndex)
	copy(dst[MetadataLength:], s.Value)

	body := dst[:n-ChecksumLength]
	binary.BigEndian.PutUint32(dst[n-ChecksumLength:n], crc32.ChecksumIEEE(body))
	return n, nil
}

// Encode serializes the shard into a new buffer.
func (s Shard) Encode() ([]byte, error) {
	buf := make([]byte, s.EncodedLen())
	if _, err := s.EncodeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeShard parses a serialized shard, verifying its checksum and header.
func DecodeShard(data []byte) (Shard, error) {
	if len(data) < MinSerializedLength {
		return Shard{}, ErrNotEnoughSerializedBytes
	}
	valueLen := len(data) - MetadataLength - ChecksumLength
	if valueLen > MaxSecretLength {
		return Shard{}, ErrSecretTooLong
	}
	if valueLen%2 != 0 {
		return Shard{}, ErrSecretLengthNotEven
	}

	body := data[:len(data)-ChecksumLength]
	if crc32.ChecksumIEEE(body) != binary.BigEndian.Uint32(data[len(data)-ChecksumLength:]) {
		return Shard{}, ErrInvalidShardBuffer
	}

	if data[4]>>4 != 0 {
		return Shard{}, ErrInvalidReservedBits
	}

	s := Shard{
		Identifier:      binary.BigEndian.Uint16(data[0:2]),
		GroupThreshold:  int(data[2]>>4) + 1,
		GroupCount:      int(data[2]&0x0f) + 1,
		GroupIndex:      int(data[3] >> 4),
		MemberThreshold: int(data[3]&0x0f) + 1,
		MemberIndex:     int(data[4] & 0x0f),
		Value:           bytes.Clone(data[MetadataLength : MetadataLength+valueLen]),
	}
	if s.GroupThreshold > s.GroupCount {
		return Shard{}, ErrInvalidGroupThreshold
	}
	if s.GroupIndex >= s.GroupCount {
		return Shard{}, ErrInvalidShardBuffer
	}
	return s, nil
}

// GroupShards arranges shards by group, each group ordered by member index.
func GroupShards(shards []Shard) [][]Shard {
	byGroup := map[int][]Shard{}
	var order []int
	for _, s := range shards {
		if _, ok := byGroup[s.GroupIndex]; !ok {
			order = append(order, s.GroupIndex)
		}
		byGroup[s.GroupIndex] = append(byGroup[s.GroupIndex], s)
	}
	slices.Sort(order)

	out := make([][]Shard, 0, len(order))
	for _, gi := range order {
		members := byGroup[gi]
		slices.SortFunc(members, func(a, b Shard) int { return a.MemberIndex - b.MemberIndex })
		out = append(out, members)
	}
	return out
}
