package cryptoutils

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
)

var ErrInvalidSignature = errors.New("invalid signature")

// GenerateAdminKeyPair generates a P-256 key pair for an administrator and
// returns the private and public keys in PEM format.
func GenerateAdminKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate ECDSA key: %w", err)
	}

	privateKeyBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	privateKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privateKeyBytes})
	publicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicKeyBytes})
	return privateKeyPEM, publicKeyPEM, nil
}

// ParsePrivateKey parses an ECDSA private key in SEC1 or PKCS#8 PEM form.
func ParsePrivateKey(privateKeyPEM []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing private key")
	}

	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
	return ecKey, nil
}

// ParsePublicKey parses a PKIX public key in PEM form. Only ECDSA and Ed25519
// keys are accepted.
func ParsePublicKey(publicKeyPEM []byte) (any, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, errors.New("invalid public key: not in PEM format or not a public key")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("invalid public key structure: %w", err)
	}

	switch pubKey.(type) {
	case *ecdsa.PublicKey, ed25519.PublicKey:
		return pubKey, nil
	default:
		return nil, fmt.Errorf("admin public key is neither ECDSA nor Ed25519 key: %T", pubKey)
	}
}

// ComputeFingerprint returns the hex SHA-256 of the PEM encoded public key.
func ComputeFingerprint(publicKeyPEM []byte) string {
	h := sha256.Sum256(publicKeyPEM)
	return hex.EncodeToString(h[:])
}

// SignShard signs the SHA-256 digest of a serialized shard.
func SignShard(shard []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	digest := sha256.Sum256(shard)
	return ecdsa.SignASN1(rand.Reader, privateKey, digest[:])
}

// VerifyShardSignature checks a signature produced by SignShard, or an
// Ed25519 signature over the raw shard bytes.
func VerifyShardSignature(publicKeyPEM, shard, signature []byte) error {
	return verify(publicKeyPEM, shard, signature)
}

// RequestMessage is the byte string an admin signs to authenticate an HTTP
// request: the URL path followed by the request body.
func RequestMessage(path string, body []byte) []byte {
	msg := make([]byte, 0, len(path)+len(body))
	msg = append(msg, path...)
	return append(msg, body...)
}

// SignRequest signs RequestMessage(path, body).
func SignRequest(path string, body []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	digest := sha256.Sum256(RequestMessage(path, body))
	return ecdsa.SignASN1(rand.Reader, privateKey, digest[:])
}

// VerifyRequestSignature checks a signature produced by SignRequest.
func VerifyRequestSignature(publicKeyPEM []byte, path string, body, signature []byte) error {
	return verify(publicKeyPEM, RequestMessage(path, body), signature)
}

func verify(publicKeyPEM, message, signature []byte) error {
	pubKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return err
	}

	switch key := pubKey.(type) {
	case *ecdsa.PublicKey:
		digest := sha256.Sum256(message)
		if !ecdsa.VerifyASN1(key, digest[:], signature) {
			return ErrInvalidSignature
		}
	case ed25519.PublicKey:
		if !ed25519.Verify(key, message, signature) {
			return ErrInvalidSignature
		}
	}
	return nil
}
