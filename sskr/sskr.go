package sskr

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

type splitOptions struct {
	identifier    uint16
	hasIdentifier bool
	random        io.Reader
}

// Option customizes Split.
type Option func(*splitOptions)

// WithIdentifier fixes the split identifier instead of drawing it at random.
func WithIdentifier(id uint16) Option {
	return func(o *splitOptions) {
		o.identifier = id
		o.hasIdentifier = true
	}
}

// WithRandom replaces crypto/rand as the source of identifiers and polynomial
// coefficients. Intended for deterministic tests.
func WithRandom(r io.Reader) Option {
	return func(o *splitOptions) {
		o.random = r
	}
}

// Split encrypts secret and shares it two levels deep: groupThreshold of the
// groups are needed to recover the secret, and each group needs its own member
// threshold of shards. Shards are returned ordered by group then by member.
func Split(secret []byte, groupThreshold int, groups []GroupDescriptor, opts ...Option) ([]Shard, error) {
	if err := ValidateSecret(secret); err != nil {
		return nil, err
	}
	if err := ValidateGroups(groupThreshold, groups); err != nil {
		return nil, err
	}

	o := splitOptions{random: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}

	if !o.hasIdentifier {
		var buf [2]byte
		if _, err := io.ReadFull(o.random, buf[:]); err != nil {
			return nil, fmt.Errorf("sskr: failed to generate identifier: %w", err)
		}
		o.identifier = binary.BigEndian.Uint16(buf[:])
	}

	encrypted := encryptSecret(secret, o.identifier, 0)
	defer wipeBytes(encrypted)

	groupShares, err := splitSecret(o.random, groupThreshold, len(groups), encrypted)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, share := range groupShares {
			wipeBytes(share)
		}
	}()

	total := 0
	for _, g := range groups {
		total += g.Count
	}

	shards := make([]Shard, 0, total)
	for gi, g := range groups {
		memberShares, err := splitSecret(o.random, g.Threshold, g.Count, groupShares[gi])
		if err != nil {
			return nil, err
		}
		for mi, value := range memberShares {
			shards = append(shards, Shard{
				Identifier:      o.identifier,
				GroupIndex:      gi,
				GroupThreshold:  groupThreshold,
				GroupCount:      len(groups),
				MemberIndex:     mi,
				MemberThreshold: g.Threshold,
				Value:           value,
			})
		}
	}

	return shards, nil
}

type memberBucket struct {
	groupIndex      int
	memberThreshold int
	memberIndices   []int
	values          [][]byte
}

// Combine recovers the secret from shards of a single split. Extra shards
// beyond what the thresholds require are ignored.
func Combine(shards []Shard) ([]byte, error) {
	if len(shards) == 0 {
		return nil, ErrEmptyShardSet
	}

	first := shards[0]
	var buckets []*memberBucket
	for _, s := range shards {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if s.Identifier != first.Identifier ||
			s.GroupThreshold != first.GroupThreshold ||
			s.GroupCount != first.GroupCount ||
			s.IterationExponent != first.IterationExponent ||
			len(s.Value) != len(first.Value) {
			return nil, ErrInvalidShardSet
		}

		var bucket *memberBucket
		for _, b := range buckets {
			if b.groupIndex == s.GroupIndex {
				bucket = b
				break
			}
		}
		if bucket == nil {
			bucket = &memberBucket{groupIndex: s.GroupIndex, memberThreshold: s.MemberThreshold}
			buckets = append(buckets, bucket)
		}

		if bucket.memberThreshold != s.MemberThreshold {
			return nil, ErrInvalidMemberThreshold
		}
		for _, mi := range bucket.memberIndices {
			if mi == s.MemberIndex {
				return nil, ErrDuplicateMemberIndex
			}
		}
		bucket.memberIndices = append(bucket.memberIndices, s.MemberIndex)
		bucket.values = append(bucket.values, s.Value)
	}

	if len(buckets) < first.GroupThreshold {
		return nil, ErrNotEnoughGroups
	}

	groupIndices := make([]int, 0, first.GroupThreshold)
	groupValues := make([][]byte, 0, first.GroupThreshold)
	defer func() {
		for _, v := range groupValues {
			wipeBytes(v)
		}
	}()

	for _, b := range buckets {
		if len(b.values) < b.memberThreshold {
			continue
		}
		value, err := recoverSecret(b.memberThreshold, b.memberIndices, b.values)
		if err != nil {
			return nil, err
		}
		groupIndices = append(groupIndices, b.groupIndex)
		groupValues = append(groupValues, value)
		if len(groupValues) == first.GroupThreshold {
			break
		}
	}

	if len(groupValues) < first.GroupThreshold {
		return nil, ErrNotEnoughMemberShards
	}

	encrypted, err := recoverSecret(first.GroupThreshold, groupIndices, groupValues)
	if err != nil {
		return nil, err
	}
	defer wipeBytes(encrypted)

	return decryptSecret(encrypted, first.Identifier, first.IterationExponent), nil
}

// CombineEncoded decodes serialized shards and combines them.
func CombineEncoded(encoded [][]byte) ([]byte, error) {
	if len(encoded) == 0 {
		return nil, ErrEmptyShardSet
	}
	shards := make([]Shard, 0, len(encoded))
	for i, data := range encoded {
		s, err := DecodeShard(data)
		if err != nil {
			return nil, fmt.Errorf("shard %d: %w", i, err)
		}
		shards = append(shards, s)
	}
	return Combine(shards)
}

// EncodeShards serializes every shard, stopping at the first failure.
func EncodeShards(shards []Shard) ([][]byte, error) {
	out := make([][]byte, 0, len(shards))
	for _, s := range shards {
		data, err := s.Encode()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		out = append(out, data)
	}
	return out, nil
}
