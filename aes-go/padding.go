package aesgo

import "bytes"

// AddPadding appends PKCS7 padding. A full block of 16s is added when b is
// already block aligned, so the result is always 1 to 16 bytes longer.
func AddPadding(b []byte) []byte {
	p := BlockSize - len(b)%BlockSize

	padded := make([]byte, len(b), len(b)+p)
	copy(padded, b)
	return append(padded, bytes.Repeat([]byte{byte(p)}, p)...)
}

// RemovePadding verifies and strips PKCS7 padding.
func RemovePadding(b []byte) ([]byte, error) {
	l := len(b)
	if l == 0 || l%BlockSize != 0 {
		return nil, ErrInvalidPadding
	}

	p := int(b[l-1])
	if p < 1 || p > BlockSize {
		return nil, ErrInvalidPadding
	}

	for _, v := range b[l-p:] {
		if int(v) != p {
			return nil, ErrInvalidPadding
		}
	}

	return b[:l-p], nil
}
