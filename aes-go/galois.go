package aesgo

import "math/bits"

// Substitution and GF(2^8) multiplication tables. They are filled once by
// init and only read afterwards, so they are safe to share between goroutines.
var (
	sBox    [256]byte
	invSBox [256]byte

	mul2  [256]byte
	mul3  [256]byte
	mul9  [256]byte
	mul11 [256]byte
	mul13 [256]byte
	mul14 [256]byte
)

func init() {
	for i := 0; i < 256; i++ {
		b := byte(i)
		mul2[i] = gmul(b, 0x02)
		mul3[i] = gmul(b, 0x03)
		mul9[i] = gmul(b, 0x09)
		mul11[i] = gmul(b, 0x0b)
		mul13[i] = gmul(b, 0x0d)
		mul14[i] = gmul(b, 0x0e)
	}

	for i := 0; i < 256; i++ {
		s := affine(inverse(byte(i)))
		sBox[i] = s
		invSBox[s] = byte(i)
	}
}

// inverse returns the multiplicative inverse of a in GF(2^8). Zero maps to zero.
func inverse(a byte) byte {
	if a == 0 {
		return 0
	}

	// the multiplicative group has order 255, so a^254 == a^-1
	r := byte(1)
	for i := 0; i < 254; i++ {
		r = gmul(r, a)
	}
	return r
}

// affine applies the S-box affine transformation over GF(2).
func affine(b byte) byte {
	return b ^
		bits.RotateLeft8(b, 1) ^
		bits.RotateLeft8(b, 2) ^
		bits.RotateLeft8(b, 3) ^
		bits.RotateLeft8(b, 4) ^
		0x63
}
