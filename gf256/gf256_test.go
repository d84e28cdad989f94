package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowMul is carry-less multiplication reduced by Polynomial.
func slowMul(a, b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		if b&1 == 1 {
			r ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= Polynomial & 0xff
		}
		b >>= 1
	}
	return r
}

func TestMulMatchesCarrylessMultiplication(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			require.Equal(t, slowMul(byte(a), byte(b)), Mul(byte(a), byte(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestDivIsInverseOfMul(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			p := Mul(byte(a), byte(b))
			require.Equal(t, byte(a), Div(p, byte(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		assert.Equal(t, byte(1), Mul(byte(a), Inverse(byte(a))))
	}
	assert.Panics(t, func() { Inverse(0) })
	assert.Panics(t, func() { Div(7, 0) })
}

func TestPow(t *testing.T) {
	tests := []struct {
		name string
		base byte
		e    uint
		want byte
	}{
		{"zero exponent", 0x53, 0, 1},
		{"zero to zero", 0, 0, 1},
		{"zero base", 0, 5, 0},
		{"identity", 0x53, 1, 0x53},
		{"generator order", 3, 255, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pow(tt.base, tt.e))
		})
	}

	for base := 0; base < 256; base++ {
		want := byte(1)
		for e := uint(0); e < 10; e++ {
			require.Equal(t, want, Pow(byte(base), e), "base=%d e=%d", base, e)
			want = Mul(want, byte(base))
		}
	}
}

func TestAddIsXor(t *testing.T) {
	assert.Equal(t, byte(0), Add(0xab, 0xab))
	assert.Equal(t, byte(0xff), Add(0xf0, 0x0f))
}

func TestConcurrentFirstUse(t *testing.T) {
	done := make(chan byte, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- Mul(0x57, 0x83) }()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, byte(0xc1), <-done)
	}
}
