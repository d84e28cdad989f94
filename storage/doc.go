// Package storage provides content-addressed storage for SSKR shards with
// pluggable backends.
//
// Content is identified by the SHA-256 of its bytes. Shards and split
// manifests live in separate namespaces selected by interfaces.ContentType.
// Backends:
//
//   - FileBackend for local directories
//   - S3Backend for S3-compatible object stores
//   - IPFSBackend for an IPFS node's HTTP API
//   - VaultBackend for a HashiCorp Vault KV v2 engine
//   - GitHubBackend for reading shards committed to a repository (read-only)
//
// # Location URIs
//
//	file:///var/lib/sskr
//	s3://bucket/prefix?region=us-east-1
//	ipfs://127.0.0.1:5001?timeout=30s
//	vault://vault.example.com:8200/secret/sskr?token=...
//	github://owner/repo/shards?ref=main&token=...
//
// StorageBackendFactory turns URIs into backends. CreateMultiBackend combines
// several locations: writes go to every backend and reads are served by the
// first backend that has the content.
//
// # Shard store
//
// ShardStore sits on top of a backend. StoreShards writes each serialized
// shard and then a JSON manifest listing them, and returns the manifest ID.
// The manifest records the split layout and shard locations but never share
// values. LoadShards fetches what it can find:
//
//	store := storage.NewShardStore(backend, logger)
//	manifestID, _, err := store.StoreShards(ctx, shards)
//	...
//	shards, manifest, err := store.LoadShards(ctx, manifestID)
//	secret, err := sskr.Combine(shards)
package storage
