package sskr

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupDescriptor describes the shape of one group: how many member shards
// are produced for it and how many of them are needed to recover its share.
type GroupDescriptor struct {
	Threshold int `json:"threshold" yaml:"threshold"`
	Count     int `json:"count" yaml:"count"`
}

// String formats the descriptor as "T-of-N".
func (g GroupDescriptor) String() string {
	return fmt.Sprintf("%d-of-%d", g.Threshold, g.Count)
}

// ParseGroupDescriptor parses the "T-of-N" form produced by String.
func ParseGroupDescriptor(s string) (GroupDescriptor, error) {
	parts := strings.Split(strings.TrimSpace(s), "-of-")
	if len(parts) != 2 {
		return GroupDescriptor{}, fmt.Errorf("invalid group descriptor %q, expected T-of-N", s)
	}
	threshold, err := strconv.Atoi(parts[0])
	if err != nil {
		return GroupDescriptor{}, fmt.Errorf("invalid group threshold in %q: %w", s, err)
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil {
		return GroupDescriptor{}, fmt.Errorf("invalid group count in %q: %w", s, err)
	}
	return GroupDescriptor{Threshold: threshold, Count: count}, nil
}

// Validate checks a single group in isolation.
func (g GroupDescriptor) Validate() error {
	if g.Count == 1 && g.Threshold != 1 {
		return ErrInvalidSingletonMember
	}
	if g.Count < 1 || g.Count > MaxShardCount || g.Threshold < 1 || g.Threshold > g.Count {
		return ErrInvalidMemberThreshold
	}
	return nil
}

// ValidateGroups checks an entire split layout.
func ValidateGroups(groupThreshold int, groups []GroupDescriptor) error {
	if len(groups) < 1 || len(groups) > MaxShardCount {
		return ErrInvalidGroupThreshold
	}
	if groupThreshold < 1 || groupThreshold > len(groups) {
		return ErrInvalidGroupThreshold
	}
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSecret checks the length constraints on a secret.
func ValidateSecret(secret []byte) error {
	switch n := len(secret); {
	case n < MinSecretLength:
		return ErrSecretTooShort
	case n > MaxSecretLength:
		return ErrSecretTooLong
	case n%2 != 0:
		return ErrSecretLengthNotEven
	}
	return nil
}
