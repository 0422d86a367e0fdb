// Package shred drives the AES keystream modes or a random overwrite over a
// file in place, one bounded chunk at a time.
//
// Every Process and Wipe call reports exactly one Result to the observers of
// its File. Validation problems are returned as errors before any byte is
// touched and are not reported to observers. I/O failures and cancellation
// are never returned as errors: they end the operation, leave the bytes
// written so far in place, and show up as a Failed or Canceled Result.
package shred

import (
	"sync"

	"code.cloudfoundry.org/clock"
	"github.com/Shayhha/FileShredder/internal/flogging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// MaxChunkSize bounds the memory an operation holds per buffer.
const MaxChunkSize = 1024 * 1024

var (
	// ErrNotExist is returned by Open when the path names nothing.
	ErrNotExist = errors.New("shred: file does not exist")
	// ErrNotRegular is returned by Open for directories, devices and other
	// non-regular files.
	ErrNotRegular = errors.New("shred: not a regular file")
	// ErrUnsupportedMode rejects padded modes such as ECB and CBC, which
	// cannot rewrite a file in place.
	ErrUnsupportedMode = errors.New("shred: mode would change the file length")
	// ErrInvalidPasses is returned by Wipe when passes is below one.
	ErrInvalidPasses = errors.New("shred: passes must be positive")
	// ErrNilFile is returned by Process and Wipe when given a nil File.
	ErrNilFile = errors.New("shred: nil file")

	errCanceled = errors.New("shred: canceled")
)

var logger = flogging.MustGetLogger("shred")

// Engine runs Process and Wipe. An Engine holds no per-operation state and
// can run operations on different files concurrently.
type Engine struct {
	chunkSize int
	strategy  Strategy
	seed      func() (uint64, uint64, error)
	clock     clock.Clock
	logger    *zap.SugaredLogger
}

type Option func(*Engine)

// WithChunkSize sets the chunk size, clamped to [1, MaxChunkSize].
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		switch {
		case n < 1:
			n = 1
		case n > MaxChunkSize:
			n = MaxChunkSize
		}
		e.chunkSize = n
	}
}

func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		e.strategy = s
	}
}

// WithSeed fixes the seed of the wipe generator. Only meant for tests that
// need reproducible wipe output.
func WithSeed(s1, s2 uint64) Option {
	return func(e *Engine) {
		e.seed = func() (uint64, uint64, error) { return s1, s2, nil }
	}
}

// WithClock replaces the clock that times operations.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		chunkSize: MaxChunkSize,
		strategy:  Sequential,
		seed:      entropySeed,
		clock:     clock.NewClock(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// chunkFunc fills or transforms buf, the chunk that lives at off.
type chunkFunc func(buf []byte, off int64) error

// pass is one full sweep over a file. mutex guards every call on file, so
// a pipelined sweep never reads and writes the handle at the same time.
type pass struct {
	mutex    sync.Mutex
	file     afero.File
	size     int64
	read     bool
	fn       chunkFunc
	session  *Session
	progress func(done int64)
}

func (e *Engine) bufferSize(size int64) int {
	if size < int64(e.chunkSize) {
		return int(size)
	}
	return e.chunkSize
}

// run opens f, hands the handle to body, closes it and reports the result.
// after runs only once body succeeded and the handle is closed.
func (e *Engine) run(s *Session, f *File, op Operation, body func(afero.File) error, after func() error) Result {
	log := e.logger.With("op", op, "path", f.Path)
	log.Debugw("starting", "size", f.Size)
	start := e.clock.Now()

	err := e.handle(f, body)
	if err == nil && after != nil {
		err = after()
	}

	r := Result{Op: op, Path: f.Path, Elapsed: e.clock.Since(start)}
	log = log.With("elapsed", r.Elapsed)
	switch {
	case err == nil:
		r.Outcome = Succeeded
		log.Debugw("operation finished", "outcome", r.Outcome)
	case errors.Is(err, errCanceled):
		r.Outcome = Canceled
		log.Warnw("operation canceled, file is partially processed", "outcome", r.Outcome)
	default:
		r.Outcome = Failed
		r.Err = err
		s.fail()
		log.Errorw("operation failed", "outcome", r.Outcome, "error", err)
	}

	f.notify(r)
	return r
}

// handle opens f and runs body on the handle. The handle is closed even when
// body panics.
func (e *Engine) handle(f *File, body func(afero.File) error) (err error) {
	file, err := f.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "error closing file %s", f.FullName)
		}
	}()

	return body(file)
}

func scrub(bufs ...[]byte) {
	for _, b := range bufs {
		for i := range b {
			b[i] = 0
		}
	}
}
