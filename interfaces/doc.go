// Package interfaces defines the contracts between the shard storage, the
// recovery keeper and the HTTP layer, without implementation details.
//
// # Storage
//
// StorageBackend is content-addressed storage for serialized shards and split
// manifests, with file, S3, IPFS, Vault and read-only GitHub implementations in package storage.
// StorageBackendFactory builds backends from URIs:
//
//	file:///var/lib/sskr
//	s3://bucket/prefix?region=us-east-1
//	ipfs://127.0.0.1:5001
//	vault://vault.example.com:8200/secret/sskr?token=...
//	github://owner/repo/shards?ref=main
//
// # Recovery
//
// ShardKeeper collects signed shards from admins until the secret they protect
// can be recovered. Status exposes per-group progress without revealing shard
// contents.
package interfaces
