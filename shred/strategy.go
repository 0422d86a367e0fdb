package shred

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Strategy selects how the chunk loop is scheduled. Both strategies produce
// the same bytes on disk.
type Strategy int

const (
	// Sequential reads, transforms and writes one chunk at a time.
	Sequential Strategy = iota

	// Pipelined reads and transforms chunk n while chunk n-1 is being
	// written. Writes stay in offset order and never overlap a read.
	Pipelined
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case Pipelined:
		return "pipelined"
	default:
		return "unknown"
	}
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "sequential", "":
		return Sequential, nil
	case "pipelined":
		return Pipelined, nil
	default:
		return 0, errors.Errorf("unknown strategy %q", s)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (e *Engine) sweep(p *pass) error {
	if e.strategy == Pipelined {
		return e.sweepPipelined(p)
	}
	return e.sweepSequential(p)
}

func (e *Engine) sweepSequential(p *pass) error {
	buf := make([]byte, e.bufferSize(p.size))
	defer scrub(buf)

	for off := int64(0); off < p.size; {
		if p.session.Canceled() {
			return errCanceled
		}

		chunk := buf[:e.bufferSize(p.size-off)]
		if err := p.load(chunk, off); err != nil {
			return err
		}
		if err := p.store(chunk, off); err != nil {
			return err
		}

		off += int64(len(chunk))
		p.progress(off)
	}

	return nil
}

type pending struct {
	buf []byte
	off int64
}

func (e *Engine) sweepPipelined(p *pass) error {
	bufs := [][]byte{
		make([]byte, e.bufferSize(p.size)),
		make([]byte, e.bufferSize(p.size)),
	}
	defer scrub(bufs...)

	free := make(chan []byte, len(bufs))
	for _, b := range bufs {
		free <- b
	}
	writes := make(chan pending)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		for w := range writes {
			if err := p.store(w.buf, w.off); err != nil {
				return err
			}
			p.progress(w.off + int64(len(w.buf)))
			free <- w.buf[:cap(w.buf)]
		}
		return nil
	})

	g.Go(func() error {
		defer close(writes)

		for off := int64(0); off < p.size; {
			if p.session.Canceled() {
				return errCanceled
			}

			var buf []byte
			select {
			case buf = <-free:
			case <-ctx.Done():
				return nil
			}

			chunk := buf[:e.bufferSize(p.size-off)]
			if err := p.load(chunk, off); err != nil {
				return err
			}

			select {
			case writes <- pending{buf: chunk, off: off}:
			case <-ctx.Done():
				return nil
			}
			off += int64(len(chunk))
		}
		return nil
	})

	return g.Wait()
}

// load reads the chunk at off when the pass needs the old bytes, then applies
// the pass function. Only the read holds the handle lock.
func (p *pass) load(chunk []byte, off int64) error {
	if p.read {
		p.mutex.Lock()
		n, err := p.file.ReadAt(chunk, off)
		p.mutex.Unlock()
		if err == io.EOF && n == len(chunk) {
			err = nil
		}
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return errors.Wrapf(err, "error reading %d bytes at offset %d", len(chunk), off)
		}
	}
	return p.fn(chunk, off)
}

func (p *pass) store(chunk []byte, off int64) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if _, err := p.file.WriteAt(chunk, off); err != nil {
		return errors.Wrapf(err, "error writing %d bytes at offset %d", len(chunk), off)
	}
	return nil
}

// sync flushes the handle once the sweep has written every chunk.
func (p *pass) sync(name string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.file.Sync(); err != nil {
		return errors.Wrapf(err, "error syncing file %s", name)
	}
	return nil
}
