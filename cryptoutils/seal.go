package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const sealInfo = "sskr shard seal v1"

// ErrSealedDataInvalid is returned when sealed data is truncated or fails authentication.
var ErrSealedDataInvalid = errors.New("sealed data invalid")

// SealForAdmin encrypts data to an admin's ECDSA P-256 public key with an
// ephemeral ECDH key, HKDF-SHA256 and AES-256-GCM.
//
// Format: [ephemeral key length (2 bytes)][ephemeral key][nonce][ciphertext]
func SealForAdmin(publicKeyPEM, data []byte) ([]byte, error) {
	pubKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	ecdsaKey, ok := pubKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("sealing requires an ECDSA key, got %T", pubKey)
	}
	recipient, err := ecdsaKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("unsupported recipient key: %w", err)
	}

	ephemeral, err := recipient.Curve().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral key: %w", err)
	}
	shared, err := ephemeral.ECDH(recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to derive shared secret: %w", err)
	}

	ephemeralBytes := ephemeral.PublicKey().Bytes()
	aead, err := sealAEAD(shared, ephemeralBytes)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 2, 2+len(ephemeralBytes)+len(nonce)+len(data)+aead.Overhead())
	binary.BigEndian.PutUint16(out, uint16(len(ephemeralBytes)))
	out = append(out, ephemeralBytes...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, ephemeralBytes), nil
}

// OpenWithAdminKey reverses SealForAdmin.
func OpenWithAdminKey(privateKey *ecdsa.PrivateKey, sealed []byte) ([]byte, error) {
	if len(sealed) < 2 {
		return nil, ErrSealedDataInvalid
	}
	keyLen := int(binary.BigEndian.Uint16(sealed))
	if len(sealed) < 2+keyLen {
		return nil, ErrSealedDataInvalid
	}
	ephemeralBytes := sealed[2 : 2+keyLen]

	priv, err := privateKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("unsupported private key: %w", err)
	}
	ephemeral, err := priv.Curve().NewPublicKey(ephemeralBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ephemeral key", ErrSealedDataInvalid)
	}
	shared, err := priv.ECDH(ephemeral)
	if err != nil {
		return nil, fmt.Errorf("failed to derive shared secret: %w", err)
	}

	aead, err := sealAEAD(shared, ephemeralBytes)
	if err != nil {
		return nil, err
	}

	rest := sealed[2+keyLen:]
	if len(rest) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrSealedDataInvalid
	}
	plaintext, err := aead.Open(nil, rest[:aead.NonceSize()], rest[aead.NonceSize():], ephemeralBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedDataInvalid, err)
	}
	return plaintext, nil
}

func sealAEAD(shared, ephemeralBytes []byte) (cipher.AEAD, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, ephemeralBytes, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

