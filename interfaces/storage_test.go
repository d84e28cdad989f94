package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentID_Hex(t *testing.T) {
	id := ComputeID([]byte("shard"))

	parsed, err := NewContentIDFromHex(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	parsed, err = NewContentIDFromHex("0x" + id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Len(t, id.Short(), 16)

	_, err = NewContentIDFromHex("abcd")
	assert.Error(t, err, "Should reject short hex")

	_, err = NewContentIDFromHex(string(make([]byte, 64)))
	assert.Error(t, err, "Should reject non-hex characters")
}

func TestNewStorageBackendLocation(t *testing.T) {
	tests := []struct {
		uri     string
		scheme  string
		wantErr bool
	}{
		{"file:///tmp/shards", "file", false},
		{"s3://AKIA:secret@bucket/prefix?region=eu-west-1", "s3", false},
		{"ipfs://127.0.0.1:5001/", "ipfs", false},
		{"vault://vault:8200/secret/sskr?token=t", "vault", false},
		{"github://owner/repo", "github", false},
		{"ftp://host/shards", "", true},
		{"://bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			loc, err := NewStorageBackendLocation(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocationURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scheme, loc.Scheme)
			assert.Equal(t, tt.uri, loc.String())
		})
	}

	loc, err := NewStorageBackendLocation("s3://AKIA:secret@bucket/prefix?region=eu-west-1&public=yes")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", loc.GetParam("region"))
	assert.True(t, loc.GetParamBool("public"))
	assert.Equal(t, "AKIA", loc.User.Username())
}

func TestContentType_String(t *testing.T) {
	assert.Equal(t, "shard", ShardType.String())
	assert.Equal(t, "manifest", ManifestType.String())
	assert.Equal(t, "unknown", ContentType(9).String())
}
