// Package kms keeps a master seed protected by a sharded split.
//
// # SSKRKMS
//
// The seed is split with sskr into groups of members, each member shard
// assigned to one administrator by public key. An administrator may hold
// shards in several groups.
//
// NewSSKRKMS splits a fresh seed and returns the assigned shards for
// distribution. NewSSKRKMSRecovery starts locked and accepts shards through
// SubmitShard, each signed by the administrator it was assigned to:
//
//   - the signature covers the serialized shard bytes
//   - a shard is only accepted for a slot assigned to the signing admin
//   - identical resubmissions are ignored, conflicting ones rejected
//   - once enough groups are satisfied the seed is recovered and the
//     collected shards are wiped
//
// The recovered seed stays in memory. Application keys are derived from it
// with HKDF-SHA256 via DeriveKey.
//
// # Split plans
//
// LoadSplitPlan reads the YAML mapping of administrators to groups used by
// both the split CLI and the recovery server.
package kms
