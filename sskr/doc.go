// Package sskr implements Sharded Secret Key Reconstruction.
//
// A secret of 16 to 32 bytes (even length) is first encrypted with a
// four-round Feistel network keyed by a random 16-bit split identifier, then
// shared with Shamir's scheme over GF(256) in two levels: the encrypted secret
// is split among groups, and each group share is split among that group's
// members. Any group threshold of groups, each with its member threshold of
// shards, recovers the secret.
//
// Each shard serializes to a five byte header, the share value and a CRC-32
// checksum:
//
//	id(2) | gt-1:4 gc-1:4 | gi:4 mt-1:4 | reserved:4 mi:4 | value | crc32(4)
package sskr
