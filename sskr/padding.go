package sskr

import "bytes"

// paddingBlock keeps padded secrets at an even length.
const paddingBlock = 2

// PadSecret extends a secret that does not meet the length rules into one that
// does, so keys of arbitrary size between 14 and 31 bytes can be split.
// The padding is PKCS#7 over two-byte blocks, so one or two bytes are always added.
func PadSecret(secret []byte) ([]byte, error) {
	if len(secret)+paddingBlock < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if len(secret) >= MaxSecretLength {
		return nil, ErrSecretTooLong
	}
	pad := paddingBlock - len(secret)%paddingBlock
	out := make([]byte, len(secret), len(secret)+pad)
	copy(out, secret)
	return append(out, bytes.Repeat([]byte{byte(pad)}, pad)...), nil
}

// UnpadSecret removes the padding added by PadSecret.
func UnpadSecret(padded []byte) ([]byte, error) {
	if len(padded) == 0 || len(padded)%paddingBlock != 0 {
		return nil, ErrInvalidPadding
	}
	pad := int(padded[len(padded)-1])
	if pad < 1 || pad > paddingBlock {
		return nil, ErrInvalidPadding
	}
	for _, b := range padded[len(padded)-pad:] {
		if int(b) != pad {
			return nil, ErrInvalidPadding
		}
	}
	return bytes.Clone(padded[:len(padded)-pad]), nil
}
