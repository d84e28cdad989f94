package storage

import (
	"testing"

	"github.com/ruteri/sskr-service/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, uri string) interfaces.StorageBackendLocation {
	t.Helper()
	loc, err := interfaces.NewStorageBackendLocation(uri)
	require.NoError(t, err)
	return loc
}

func TestStorageBackendFactory_StorageBackendFor(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())
	dir := t.TempDir()

	tests := []struct {
		name     string
		uri      string
		wantName string
		wantErr  bool
	}{
		{"file", "file://" + dir, "", false},
		{"s3", "s3://AKIA:secret@shards/prod?region=eu-west-1&endpoint=http://minio:9000&path_style=true", "s3-shards", false},
		{"s3 without bucket", "s3:///prefix", "", true},
		{"ipfs default port", "ipfs://127.0.0.1/sskr", "ipfs-127.0.0.1-5001", false},
		{"ipfs bad timeout", "ipfs://127.0.0.1:5001?timeout=soon", "", true},
		{"vault", "vault://vault.internal:8200/secret/sskr?token=t&tls=false", "vault-secret-sskr", false},
		{"vault without mount", "vault://vault.internal:8200", "", true},
		{"github", "github://acme/shards/prod?ref=main", "github-acme-shards", false},
		{"github without repo", "github://acme", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := factory.StorageBackendFor(mustLocation(t, tt.uri))
			if tt.wantErr {
				assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, backend)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, backend.Name())
			}
			assert.NotContains(t, backend.LocationURI(), "secret@", "Credentials should not leak into the location")
		})
	}
}

func TestStorageBackendFactory_CreateMultiBackend(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())

	single, err := factory.CreateMultiBackend([]interfaces.StorageBackendLocation{
		mustLocation(t, "file://"+t.TempDir()),
		mustLocation(t, "vault://host"),
	})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, single, "A single valid location should not be wrapped")

	multi, err := factory.CreateMultiBackend([]interfaces.StorageBackendLocation{
		mustLocation(t, "file://"+t.TempDir()),
		mustLocation(t, "file://"+t.TempDir()),
	})
	require.NoError(t, err)
	assert.IsType(t, &MultiStorageBackend{}, multi)

	_, err = factory.CreateMultiBackend([]interfaces.StorageBackendLocation{mustLocation(t, "vault://host")})
	assert.Error(t, err)
}
