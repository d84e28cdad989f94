// Package cryptoutils holds the admin key handling used by the recovery keeper
// and the sskr CLI.
//
// Admins are identified by ECDSA P-256 keys in PEM form. The fingerprint of a
// key is the hex SHA-256 of its PEM encoding. Two kinds of signatures are used:
//
//   - SignShard / VerifyShardSignature cover the serialized shard bytes and
//     prove the submitting admin holds the shard slot it claims.
//   - SignRequest / VerifyRequestSignature cover sha256(path || body) and
//     authenticate calls to the admin API.
//
// # Sealed shards
//
// SealForAdmin encrypts a shard to a single admin so shards can be handed out
// over untrusted channels. Each call uses a fresh ephemeral ECDH key, derives
// an AES-256-GCM key with HKDF-SHA256 and binds the ephemeral key as
// additional data:
//
//	[ephemeral key length (2 bytes)][ephemeral key][nonce (12 bytes)][ciphertext]
//
// OpenWithAdminKey reverses it. Any truncation or authentication failure is
// reported as ErrSealedDataInvalid.
package cryptoutils
