package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ruteri/sskr-service/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVault serves the subset of the KV v2 and sys/health API the backend uses.
type fakeVault struct {
	mu      sync.Mutex
	secrets map[string]map[string]any
	sealed  bool
}

func (f *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/v1/sys/health" {
		json.NewEncoder(w).Encode(map[string]any{"initialized": true, "sealed": f.sealed})
		return
	}

	if r.Header.Get("X-Vault-Token") != "root" {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":["permission denied"]}`))
		return
	}

	key, ok := strings.CutPrefix(r.URL.Path, "/v1/secret/data/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPost:
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.secrets[key] = body.Data
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"version": 1, "created_time": "2024-01-01T00:00:00Z", "deletion_time": "", "destroyed": false},
		})
	case http.MethodGet:
		data, ok := f.secrets[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[]}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data":     data,
				"metadata": map[string]any{"version": 1, "created_time": "2024-01-01T00:00:00Z", "deletion_time": "", "destroyed": false},
			},
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeVault) set(key string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[key] = data
}

func (f *fakeVault) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.secrets[key]
	return ok
}

func (f *fakeVault) seal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sealed = true
}

func newTestVaultBackend(t *testing.T, token string) (*VaultBackend, *fakeVault) {
	t.Helper()
	fake := &fakeVault{secrets: make(map[string]map[string]any)}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	backend, err := NewVaultBackend(server.URL, "/secret/", "sskr", token, discardLogger())
	require.NoError(t, err)
	return backend, fake
}

func TestVaultBackend_StoreFetch(t *testing.T) {
	backend, fake := newTestVaultBackend(t, "root")
	ctx := context.Background()

	assert.True(t, backend.Available(ctx))
	assert.Equal(t, "vault-secret-sskr", backend.Name())
	assert.True(t, strings.HasPrefix(backend.LocationURI(), "vault://127.0.0.1:"))
	assert.True(t, strings.HasSuffix(backend.LocationURI(), "/secret/sskr"))

	data := []byte("encoded shard")
	id, err := backend.Store(ctx, data, interfaces.ShardType)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ComputeID(data), id)
	assert.True(t, fake.has("sskr/shards/"+id.String()), "Shard should be stored under the shards namespace")

	fetched, err := backend.Fetch(ctx, id, interfaces.ShardType)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	_, err = backend.Fetch(ctx, id, interfaces.ManifestType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound, "Namespaces should be separate")

	fake.set("sskr/shards/"+id.String(), map[string]any{"other": "value"})
	_, err = backend.Fetch(ctx, id, interfaces.ShardType)
	assert.Error(t, err, "Missing content key should fail")

	fake.seal()
	assert.False(t, backend.Available(ctx), "Sealed Vault should be unavailable")
}

func TestVaultBackend_PermissionDenied(t *testing.T) {
	backend, _ := newTestVaultBackend(t, "wrong")
	ctx := context.Background()

	_, err := backend.Store(ctx, []byte("data"), interfaces.ShardType)
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)

	_, err = backend.Fetch(ctx, interfaces.ComputeID([]byte("data")), interfaces.ShardType)
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
}
