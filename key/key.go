package key

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// IVSize is the length of an initialization vector (one AES block).
const IVSize = 16

// ErrInvalidSize is returned by New for material that is not 16, 24 or 32 bytes.
var ErrInvalidSize = errors.New("key: size must be 16, 24 or 32 bytes")

type Key interface {
	GetBytes() []byte
	Len() int
}

// material owns a private copy of the key bytes. GetBytes hands out that
// copy; callers must not modify it.
type material struct {
	b []byte
}

func (k *material) GetBytes() []byte {
	return k.b
}

func (k *material) Len() int {
	return len(k.b)
}

// Scrub zeroes the key material. The key must not be used afterwards.
func (k *material) Scrub() {
	Scrub(k.b)
}

// New copies b into a Key after checking its length.
func New(b []byte) (Key, error) {
	switch len(b) {
	case 16, 24, 32:
	default:
		return nil, errors.Wrapf(ErrInvalidSize, "got %d", len(b))
	}

	m := make([]byte, len(b))
	copy(m, b)
	return &material{b: m}, nil
}

// Generate returns a random key of the given size in bits. Unrecognised
// sizes fall back to 128 bits.
func Generate(bits int) Key {
	switch bits {
	case 128, 192, 256:
	default:
		bits = 128
	}
	return &material{b: generateRandomBytes(bits / 8)}
}

func Bit128() Key { return Generate(128) }
func Bit192() Key { return Generate(192) }
func Bit256() Key { return Generate(256) }

// NewIV returns 16 random bytes.
func NewIV() []byte {
	return generateRandomBytes(IVSize)
}

// Scrub overwrites b with zeroes.
func Scrub(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Release scrubs k if it owns its material.
func Release(k Key) {
	if s, ok := k.(interface{ Scrub() }); ok {
		s.Scrub()
	}
}

func generateRandomBytes(n int) []byte {
	randBytes := make([]byte, n)

	i, err := rand.Read(randBytes)
	if i != n || err != nil {
		panic("Could not generate random bytes")
	}

	return randBytes
}
