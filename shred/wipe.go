package shred

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Wipe overwrites f with pseudo-random bytes passes times, syncing after each
// pass, and deletes it afterwards when remove is set. Nothing is deleted when
// the wipe is canceled or fails.
//
// The bytes come from a PCG generator seeded from the system entropy source.
// They defeat forensic recovery of the old content but are not suitable as
// key material.
func (e *Engine) Wipe(s *Session, f *File, passes int, remove bool) (Result, error) {
	if f == nil {
		return Result{}, ErrNilFile
	}
	if passes < 1 {
		return Result{}, errors.Wrapf(ErrInvalidPasses, "got %d", passes)
	}
	if s == nil {
		s = NewSession()
	}

	var after func() error
	if remove {
		after = f.Remove
	}

	return e.run(s, f, OpWipe, func(file afero.File) error {
		s1, s2, err := e.seed()
		if err != nil {
			return err
		}
		gen := mrand.New(mrand.NewPCG(s1, s2))

		for i := 1; i <= passes; i++ {
			n := i
			e.logger.Debugw("wipe pass", "path", f.Path, "pass", n, "passes", passes)

			p := &pass{
				file: file,
				size: f.Size,
				fn: func(buf []byte, _ int64) error {
					fill(gen, buf)
					return nil
				},
				session: s,
				progress: func(done int64) {
					f.progress(Progress{Op: OpWipe, Path: f.Path, Pass: n, Passes: passes, Done: done, Total: f.Size})
				},
			}
			if err := e.sweep(p); err != nil {
				return err
			}
			if err := p.sync(f.FullName); err != nil {
				return err
			}
		}
		return nil
	}, after), nil
}

func fill(gen *mrand.Rand, b []byte) {
	for len(b) >= 8 {
		binary.LittleEndian.PutUint64(b, gen.Uint64())
		b = b[8:]
	}
	if len(b) > 0 {
		v := gen.Uint64()
		for i := range b {
			b[i] = byte(v)
			v >>= 8
		}
	}
}

func entropySeed() (uint64, uint64, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, 0, errors.Wrap(err, "error seeding wipe generator")
	}
	return binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]), nil
}
