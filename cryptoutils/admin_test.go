package cryptoutils

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminKeyPair_SignVerifyShard(t *testing.T) {
	privPEM, pubPEM, err := GenerateAdminKeyPair()
	require.NoError(t, err, "Failed to generate admin key pair")

	priv, err := ParsePrivateKey(privPEM)
	require.NoError(t, err)

	shard := []byte("serialized shard bytes")
	sig, err := SignShard(shard, priv)
	require.NoError(t, err)

	assert.NoError(t, VerifyShardSignature(pubPEM, shard, sig), "Signature should verify")
	assert.ErrorIs(t, VerifyShardSignature(pubPEM, []byte("other shard"), sig), ErrInvalidSignature)

	_, otherPub, err := GenerateAdminKeyPair()
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyShardSignature(otherPub, shard, sig), ErrInvalidSignature, "Other admin key should not verify")
}

func TestRequestSignature(t *testing.T) {
	privPEM, pubPEM, err := GenerateAdminKeyPair()
	require.NoError(t, err)
	priv, err := ParsePrivateKey(privPEM)
	require.NoError(t, err)

	body := []byte(`{"shard":"0x00"}`)
	sig, err := SignRequest("/admin/shard", body, priv)
	require.NoError(t, err)

	assert.NoError(t, VerifyRequestSignature(pubPEM, "/admin/shard", body, sig))
	assert.Error(t, VerifyRequestSignature(pubPEM, "/admin/status", body, sig), "Path is part of the signed message")
	assert.Equal(t, []byte("/a{}"), RequestMessage("/a", []byte("{}")))
}

func TestEd25519Verification(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	shard := []byte("ed25519 signed shard")
	sig := ed25519.Sign(priv, shard)
	assert.NoError(t, VerifyShardSignature(pubPEM, shard, sig))

	sig[0] ^= 0xff
	assert.ErrorIs(t, VerifyShardSignature(pubPEM, shard, sig), ErrInvalidSignature)
}

func TestParseKeys_Invalid(t *testing.T) {
	_, err := ParsePrivateKey([]byte("not-a-pem"))
	assert.Error(t, err)

	_, err = ParsePublicKey([]byte("not-a-pem"))
	assert.Error(t, err)

	_, err = ParsePublicKey(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: []byte("junk")}))
	assert.Error(t, err)

	privPEM, _, err := GenerateAdminKeyPair()
	require.NoError(t, err)
	_, err = ParsePublicKey(privPEM)
	assert.Error(t, err, "Private key PEM should not parse as public key")
}

func TestComputeFingerprint(t *testing.T) {
	_, pubPEM, err := GenerateAdminKeyPair()
	require.NoError(t, err)

	fp := ComputeFingerprint(pubPEM)
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, ComputeFingerprint(pubPEM))
}
