package aesgo

import (
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidKey is matched by every KeySizeError.
	ErrInvalidKey = errors.New("aesgo: invalid key")

	// ErrInvalidIV is returned when a mode that chains or counts is given an
	// IV that is not exactly one block long.
	ErrInvalidIV = errors.New("aesgo: IV length must equal block size")

	// ErrInvalidLength is returned for block-mode ciphertext (or a single
	// block) whose length is not a multiple of the block size.
	ErrInvalidLength = errors.New("aesgo: input is not a multiple of the block size")

	// ErrInvalidPadding is returned when PKCS7 padding does not verify.
	ErrInvalidPadding = errors.New("aesgo: invalid padding")

	// ErrUnknownMode is returned when a mode name or value is not recognized.
	ErrUnknownMode = errors.New("aesgo: unknown mode")
)

// KeySizeError reports a key whose length is not 16, 24 or 32 bytes.
type KeySizeError int

func (k KeySizeError) Error() string {
	return "aesgo: invalid key size " + strconv.Itoa(int(k))
}

func (k KeySizeError) Is(target error) bool {
	return target == ErrInvalidKey
}
