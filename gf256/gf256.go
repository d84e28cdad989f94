// Package gf256 implements arithmetic in GF(2^8) with the reduction polynomial
// x^8 + x^4 + x^3 + x + 1 (0x11b) and generator 3.
//
// Multiplication and division go through exp/log tables that are computed once
// on first use and never written again, so they are safe to share between
// goroutines. Operations on field elements do not branch on their values:
// zero operands are handled with constant-time masks.
package gf256

import (
	"crypto/subtle"
	"sync"
)

// Polynomial is the irreducible polynomial the field is reduced by.
const Polynomial = 0x11b

type fieldTables struct {
	// exp is doubled so that log[a]+log[b] indexes it without a modulo.
	exp [510]byte
	log [256]byte
}

var (
	tables     fieldTables
	tablesOnce sync.Once
)

func load() *fieldTables {
	tablesOnce.Do(func() {
		x := 1
		for i := 0; i < 255; i++ {
			tables.exp[i] = byte(x)
			tables.exp[i+255] = byte(x)
			tables.log[x] = byte(i)

			// multiply by the generator (x + 1)
			x ^= x << 1
			if x&0x100 != 0 {
				x ^= Polynomial
			}
		}
	})
	return &tables
}

// isZero returns 0xff when v is zero and 0x00 otherwise.
func isZero(v byte) byte {
	return -byte(subtle.ConstantTimeByteEq(v, 0))
}

// Add returns a + b. Subtraction is the same operation.
func Add(a, b byte) byte {
	return a ^ b
}

// Mul returns a * b.
func Mul(a, b byte) byte {
	t := load()
	r := t.exp[int(t.log[a])+int(t.log[b])]
	return r &^ (isZero(a) | isZero(b))
}

// Div returns a / b. Dividing by zero is a programming error and panics.
func Div(a, b byte) byte {
	if b == 0 {
		panic("gf256: division by zero")
	}
	t := load()
	r := t.exp[int(t.log[a])+255-int(t.log[b])]
	return r &^ isZero(a)
}

// Pow returns base raised to the power e. Pow(0, 0) is 1.
func Pow(base byte, e uint) byte {
	if e == 0 {
		return 1
	}
	t := load()
	r := t.exp[(uint(t.log[base])*(e%255))%255]
	return r &^ isZero(base)
}

// Inverse returns the multiplicative inverse of a. It panics for zero.
func Inverse(a byte) byte {
	return Div(1, a)
}
