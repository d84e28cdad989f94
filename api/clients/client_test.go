package clients

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/ruteri/sskr-service/api"
	"github.com/ruteri/sskr-service/cryptoutils"
	"github.com/ruteri/sskr-service/httpserver"
	"github.com/ruteri/sskr-service/kms"
	"github.com/ruteri/sskr-service/sskr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, admin *httpserver.AdminHandler) *httptest.Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	httpserver.NewHandler(nil, log).RegisterRoutes(r)
	if admin != nil {
		r.Mount("/admin", admin.AdminRouter())
	}
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestClient_SplitCombineInspect(t *testing.T) {
	server := newTestServer(t, nil)
	client := NewClient(server.URL, 0)
	ctx := context.Background()

	secret := bytes.Repeat([]byte{0xab}, 32)
	split, err := client.Split(ctx, api.SplitRequest{
		Secret:         secret,
		GroupThreshold: 1,
		Groups:         []sskr.GroupDescriptor{{Threshold: 2, Count: 3}},
	})
	require.NoError(t, err, "Split should succeed")
	require.Len(t, split.Groups, 1)

	recovered, err := client.Combine(ctx, api.CombineRequest{Shards: split.Groups[0][1:]})
	require.NoError(t, err, "Combine should succeed")
	assert.Equal(t, secret, recovered)

	info, err := client.Inspect(ctx, split.Groups[0][2])
	require.NoError(t, err, "Inspect should succeed")
	assert.Equal(t, 3, info.Member)
	assert.Equal(t, 32, info.ValueLength)

	_, err = client.Combine(ctx, api.CombineRequest{Shards: []hexutil.Bytes{split.Groups[0][0]}})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.True(t, errors.Is(err, sskr.ErrNotEnoughMemberShards), "sskr error kind should survive the round trip")
}

func TestClient_SubmitShard(t *testing.T) {
	privPEM, pubPEM, err := cryptoutils.GenerateAdminKeyPair()
	require.NoError(t, err)
	priv, err := cryptoutils.ParsePrivateKey(privPEM)
	require.NoError(t, err)

	config := kms.SSKRConfig{
		GroupThreshold: 1,
		Groups:         []kms.GroupConfig{{Threshold: 1, AdminPubKeys: [][]byte{pubPEM}}},
	}
	_, assigned, err := kms.NewSSKRKMS(bytes.Repeat([]byte{7}, 16), config)
	require.NoError(t, err)
	keeper, err := kms.NewSSKRKMSRecovery(config)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := newTestServer(t, httpserver.NewAdminHandler(log, keeper, map[string][]byte{"alice": pubPEM}))
	ctx := context.Background()

	_, err = NewClient(server.URL, 0).SubmitShard(ctx, assigned[0].Shard)
	assert.Error(t, err, "Submission without admin credentials should fail")

	status, err := NewClient(server.URL, 0).Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Unlocked)

	client := NewClient(server.URL, 0).WithAdmin("alice", priv)
	unlocked, err := client.SubmitShard(ctx, assigned[0].Shard)
	require.NoError(t, err, "Signed submission should succeed")
	assert.True(t, unlocked, "Single shard should unlock a 1-of-1 split")

	status, err = client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Unlocked)
}
