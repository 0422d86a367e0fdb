package shred

import (
	aesgo "github.com/Shayhha/FileShredder/aes-go"
	"github.com/Shayhha/FileShredder/key"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Direction tells Process whether to encrypt or decrypt.
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) operation() Operation {
	if d == Decrypt {
		return OpDecrypt
	}
	return OpEncrypt
}

// DeriveIV computes the IV Process uses for k: the first block of k encrypted
// under k, xored with that same block. The IV depends on nothing but the key,
// so two files encrypted under one key share their keystream.
func DeriveIV(k key.Key) ([]byte, error) {
	aes, err := aesgo.New(k)
	if err != nil {
		return nil, err
	}
	defer aes.Reset()

	return deriveIV(aes, k.GetBytes())
}

func deriveIV(aes *aesgo.AES, k []byte) ([]byte, error) {
	iv, err := aes.EncryptBlock(k[:aesgo.BlockSize])
	if err != nil {
		return nil, err
	}
	for i := range iv {
		iv[i] ^= k[i]
	}
	return iv, nil
}

// Process encrypts or decrypts f in place with a keystream mode (CTR, OFB or
// CFB). The keystream runs on across chunks, so the result equals a single
// call over the whole file. The returned error is only set for invalid
// arguments; everything else is reported through the Result.
func (e *Engine) Process(s *Session, f *File, k key.Key, mode aesgo.Mode, dir Direction) (Result, error) {
	if f == nil {
		return Result{}, ErrNilFile
	}
	if k == nil {
		return Result{}, errors.Wrap(aesgo.ErrInvalidKey, "nil key")
	}
	switch mode {
	case aesgo.CFB, aesgo.OFB, aesgo.CTR:
	default:
		return Result{}, errors.Wrapf(ErrUnsupportedMode, "%s", mode)
	}
	if s == nil {
		s = NewSession()
	}

	aes, err := aesgo.New(k)
	if err != nil {
		return Result{}, err
	}
	defer aes.Reset()

	iv, err := deriveIV(aes, k.GetBytes())
	if err != nil {
		return Result{}, err
	}
	stream, err := aes.NewStream(mode, iv, dir == Decrypt)
	key.Scrub(iv)
	if err != nil {
		return Result{}, err
	}

	op := dir.operation()
	return e.run(s, f, op, func(file afero.File) error {
		p := &pass{
			file: file,
			size: f.Size,
			read: true,
			fn: func(buf []byte, _ int64) error {
				stream.XORKeyStream(buf, buf)
				return nil
			},
			session: s,
			progress: func(done int64) {
				f.progress(Progress{Op: op, Path: f.Path, Pass: 1, Passes: 1, Done: done, Total: f.Size})
			},
		}
		if err := e.sweep(p); err != nil {
			return err
		}
		return p.sync(f.FullName)
	}, nil), nil
}
