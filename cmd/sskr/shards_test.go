package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruteri/sskr-service/cryptoutils"
	"github.com/ruteri/sskr-service/kms"
	"github.com/ruteri/sskr-service/sskr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardEncoding(t *testing.T) {
	shards, err := sskr.Split(make([]byte, 16), 1, []sskr.GroupDescriptor{{Threshold: 1, Count: 1}}, sskr.WithIdentifier(0x1234))
	require.NoError(t, err)

	for _, format := range []string{formatHex, formatCBOR} {
		t.Run(format, func(t *testing.T) {
			encoded, err := encodeShard(shards[0], format)
			require.NoError(t, err)

			decoded, err := decodeShard("0x"+encoded, format)
			require.NoError(t, err, "Encoded shard should decode with a 0x prefix")
			assert.Equal(t, shards[0], decoded)
		})
	}

	_, err = encodeShard(shards[0], "base64")
	assert.Error(t, err, "Unknown format should be rejected")

	_, err = decodeShard("zz", formatHex)
	assert.Error(t, err, "Invalid hex should be rejected")
}

func TestReadShardLines(t *testing.T) {
	input := `# group 1 (2-of-3)
SSKRShard(1234 1-1) alice 0a0b
SSKRShard(1234 1-2) 0c0d

0e0f
`
	lines, err := readShardLines(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"0a0b", "0c0d", "0e0f"}, lines, "Last field of every non-comment line should be read")
}

func TestSealedShards(t *testing.T) {
	alicePriv, alicePub, err := cryptoutils.GenerateAdminKeyPair()
	require.NoError(t, err)
	_, bobPub, err := cryptoutils.GenerateAdminKeyPair()
	require.NoError(t, err)

	plan := &kms.SplitPlan{
		GroupThreshold: 1,
		Admins: []kms.PlanAdmin{
			{ID: "alice", PubKey: string(alicePub)},
			{ID: "bob", PubKey: string(bobPub)},
		},
		Groups: []kms.PlanGroup{{Threshold: 1, Members: []string{"alice", "bob"}}},
	}
	require.NoError(t, plan.Validate())

	shards, err := sskr.Split(make([]byte, 16), plan.GroupThreshold, plan.Descriptors())
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, writeSealedShards(dir, plan, shards))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	alice, err := cryptoutils.ParsePrivateKey(alicePriv)
	require.NoError(t, err)

	shard, err := readSealedShard(filepath.Join(dir, "alice-1-1.sealed"), alice)
	require.NoError(t, err)
	assert.Equal(t, shards[0], shard)

	_, err = readSealedShard(filepath.Join(dir, "bob-1-2.sealed"), alice)
	assert.ErrorIs(t, err, cryptoutils.ErrSealedDataInvalid, "Another admin's shard should not open")
}
