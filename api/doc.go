// Package api defines the JSON types exchanged with the sskr HTTP service.
//
// Byte fields (secrets, shards, signatures) are 0x-prefixed hex strings.
// Errors are returned as ErrorResponse; failures originating from the
// sharding scheme carry the numeric sskr error code so clients can recover
// the exact error kind with errors.Is.
//
// The clients subpackage implements a Go client for both the public API and
// the admin API of a recovery keeper.
package api
