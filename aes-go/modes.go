package aesgo

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Mode int

const (
	ECB Mode = iota
	CBC
	CFB
	OFB
	CTR
)

var modeNames = map[Mode]string{
	ECB: "ecb",
	CBC: "cbc",
	CFB: "cfb",
	OFB: "ofb",
	CTR: "ctr",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Padded reports whether the mode works on whole blocks with PKCS7 padding.
func (m Mode) Padded() bool {
	return m == ECB || m == CBC
}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownMode, "%q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Encrypt encrypts text with a one-shot cipher built from key. iv is ignored
// for ECB and must be 16 bytes for every other mode.
func Encrypt(mode Mode, text, key, iv []byte) ([]byte, error) {
	a, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	defer a.Reset()

	return a.Encrypt(mode, text, iv)
}

// Decrypt is the inverse of Encrypt.
func Decrypt(mode Mode, text, key, iv []byte) ([]byte, error) {
	a, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	defer a.Reset()

	return a.Decrypt(mode, text, iv)
}

func (a *AES) Encrypt(mode Mode, text, iv []byte) ([]byte, error) {
	switch mode {
	case ECB:
		return a.EncryptECB(text), nil
	case CBC:
		return a.EncryptCBC(text, iv)
	case CFB, OFB, CTR:
		return a.xorStream(mode, text, iv, false)
	default:
		return nil, ErrUnknownMode
	}
}

func (a *AES) Decrypt(mode Mode, text, iv []byte) ([]byte, error) {
	switch mode {
	case ECB:
		return a.DecryptECB(text)
	case CBC:
		return a.DecryptCBC(text, iv)
	case CFB, OFB, CTR:
		return a.xorStream(mode, text, iv, true)
	default:
		return nil, ErrUnknownMode
	}
}

// EncryptECB pads text and encrypts every block independently.
func (a *AES) EncryptECB(text []byte) []byte {
	padded := AddPadding(text)

	for i := 0; i < len(padded); i += BlockSize {
		r := a.encrypt([BlockSize]byte(padded[i : i+BlockSize]))
		copy(padded[i:], r[:])
	}

	return padded
}

func (a *AES) DecryptECB(text []byte) ([]byte, error) {
	if len(text)%BlockSize != 0 {
		return nil, ErrInvalidLength
	}

	result := make([]byte, len(text))
	for i := 0; i < len(text); i += BlockSize {
		r := a.decrypt([BlockSize]byte(text[i : i+BlockSize]))
		copy(result[i:], r[:])
	}

	return RemovePadding(result)
}

// EncryptCBC pads text and xors each plaintext block with the previous
// ciphertext block (the IV for the first) before encrypting it.
func (a *AES) EncryptCBC(text, iv []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}

	padded := AddPadding(text)
	prev := [BlockSize]byte(iv)

	for i := 0; i < len(padded); i += BlockSize {
		prev = a.encrypt(xorBlock([BlockSize]byte(padded[i:i+BlockSize]), prev))
		copy(padded[i:], prev[:])
	}

	return padded, nil
}

func (a *AES) DecryptCBC(text, iv []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}
	if len(text)%BlockSize != 0 {
		return nil, ErrInvalidLength
	}

	result := make([]byte, len(text))
	prev := [BlockSize]byte(iv)

	for i := 0; i < len(text); i += BlockSize {
		block := [BlockSize]byte(text[i : i+BlockSize])
		r := xorBlock(a.decrypt(block), prev)
		copy(result[i:], r[:])
		prev = block
	}

	return RemovePadding(result)
}

func (a *AES) EncryptCFB(text, iv []byte) ([]byte, error) { return a.xorStream(CFB, text, iv, false) }
func (a *AES) DecryptCFB(text, iv []byte) ([]byte, error) { return a.xorStream(CFB, text, iv, true) }
func (a *AES) EncryptOFB(text, iv []byte) ([]byte, error) { return a.xorStream(OFB, text, iv, false) }
func (a *AES) DecryptOFB(text, iv []byte) ([]byte, error) { return a.xorStream(OFB, text, iv, true) }
func (a *AES) EncryptCTR(text, iv []byte) ([]byte, error) { return a.xorStream(CTR, text, iv, false) }
func (a *AES) DecryptCTR(text, iv []byte) ([]byte, error) { return a.xorStream(CTR, text, iv, true) }

func (a *AES) xorStream(mode Mode, text, iv []byte, decrypt bool) ([]byte, error) {
	s, err := a.NewStream(mode, iv, decrypt)
	if err != nil {
		return nil, err
	}

	result := make([]byte, len(text))
	s.XORKeyStream(result, text)
	return result, nil
}
