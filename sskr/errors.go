package sskr

import "fmt"

// Error is a sharding failure. The numeric codes are stable and shared with
// other SSKR implementations.
type Error int

const (
	ErrNotEnoughSerializedBytes Error = -1
	ErrSecretTooShort           Error = -2
	ErrInvalidGroupThreshold    Error = -3
	ErrInvalidSingletonMember   Error = -4
	ErrInsufficientSpace        Error = -5
	ErrInvalidReservedBits      Error = -6
	ErrSecretLengthNotEven      Error = -7
	ErrInvalidShardSet          Error = -8
	ErrEmptyShardSet            Error = -9
	ErrDuplicateMemberIndex     Error = -10
	ErrNotEnoughMemberShards    Error = -11
	ErrInvalidMemberThreshold   Error = -12
	ErrInvalidPadding           Error = -13
	ErrNotEnoughGroups          Error = -14
	ErrInvalidShardBuffer       Error = -15
	ErrSecretTooLong            Error = -16
)

var errorMessages = map[Error]string{
	ErrNotEnoughSerializedBytes: "not enough serialized bytes",
	ErrSecretTooShort:           "secret too short",
	ErrInvalidGroupThreshold:    "invalid group threshold",
	ErrInvalidSingletonMember:   "invalid singleton member",
	ErrInsufficientSpace:        "insufficient space",
	ErrInvalidReservedBits:      "invalid reserved bits",
	ErrSecretLengthNotEven:      "secret length not even",
	ErrInvalidShardSet:          "invalid shard set",
	ErrEmptyShardSet:            "empty shard set",
	ErrDuplicateMemberIndex:     "duplicate member index",
	ErrNotEnoughMemberShards:    "not enough member shards",
	ErrInvalidMemberThreshold:   "invalid member threshold",
	ErrInvalidPadding:           "invalid padding",
	ErrNotEnoughGroups:          "not enough groups",
	ErrInvalidShardBuffer:       "invalid shard buffer",
	ErrSecretTooLong:            "secret too long",
}

func (e Error) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return "sskr: " + msg
	}
	return fmt.Sprintf("sskr: unknown error %d", int(e))
}

// Code returns the numeric error code.
func (e Error) Code() int {
	return int(e)
}
