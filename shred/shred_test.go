package shred

import (
	"bytes"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	aesgo "github.com/Shayhha/FileShredder/aes-go"
	"github.com/Shayhha/FileShredder/key"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// recorder keeps every result and progress report it is handed.
type recorder struct {
	mutex    sync.Mutex
	results  []Result
	progress []Progress
	onChunk  func(Progress)
}

func (r *recorder) Notify(res Result) {
	r.mutex.Lock()
	r.results = append(r.results, res)
	r.mutex.Unlock()
}

func (r *recorder) Progress(p Progress) {
	r.mutex.Lock()
	r.progress = append(r.progress, p)
	r.mutex.Unlock()
	if r.onChunk != nil {
		r.onChunk(p)
	}
}

func (r *recorder) only(t *testing.T) Result {
	t.Helper()
	r.mutex.Lock()
	defer r.mutex.Unlock()
	require.Len(t, r.results, 1)
	return r.results[0]
}

func randomBytes(n int) []byte {
	gen := rand.New(rand.NewPCG(uint64(n), 42))
	b := make([]byte, n)
	fill(gen, b)
	return b
}

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) *File {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o600))
	f, err := Open(fs, path)
	require.NoError(t, err)
	return f
}

func readFile(t *testing.T, fs afero.Fs, path string) []byte {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return b
}

var strategies = []Strategy{Sequential, Pipelined}

// failingFs hands out files whose writes start failing once limit bytes have
// been written.
type failingFs struct {
	afero.Fs
	limit int64
}

func (fs *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &failingFile{File: f, left: fs.limit}, nil
}

type failingFile struct {
	afero.File
	mutex sync.Mutex
	left  int64
}

var errDiskFull = errors.New("disk full")

func (f *failingFile) WriteAt(b []byte, off int64) (int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if int64(len(b)) > f.left {
		return 0, errDiskFull
	}
	f.left -= int64(len(b))
	return f.File.WriteAt(b, off)
}

// exclusiveFs hands out files that record whether two calls were ever in
// flight on the same handle at once.
type exclusiveFs struct {
	afero.Fs
	overlaps atomic.Int32
	opened   atomic.Int32
	closed   atomic.Int32
}

func (fs *exclusiveFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	fs.opened.Add(1)
	return &exclusiveFile{File: f, fs: fs}, nil
}

type exclusiveFile struct {
	afero.File
	fs       *exclusiveFs
	inFlight atomic.Int32
}

// enter marks a call as started and holds it open long enough for a
// concurrent call to land inside it.
func (f *exclusiveFile) enter() func() {
	if f.inFlight.Add(1) > 1 {
		f.fs.overlaps.Add(1)
	}
	time.Sleep(50 * time.Microsecond)
	return func() { f.inFlight.Add(-1) }
}

func (f *exclusiveFile) ReadAt(b []byte, off int64) (int, error) {
	defer f.enter()()
	return f.File.ReadAt(b, off)
}

func (f *exclusiveFile) WriteAt(b []byte, off int64) (int, error) {
	defer f.enter()()
	return f.File.WriteAt(b, off)
}

func (f *exclusiveFile) Sync() error {
	defer f.enter()()
	return f.File.Sync()
}

func (f *exclusiveFile) Close() error {
	f.fs.closed.Add(1)
	return f.File.Close()
}

func TestHandleCallsNeverOverlap(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			fs := &exclusiveFs{Fs: afero.NewMemMapFs()}
			plain := randomBytes(4096)
			require.NoError(t, afero.WriteFile(fs.Fs, "/file", plain, 0o600))
			f, err := Open(fs, "/file")
			require.NoError(t, err)
			e := New(WithChunkSize(64), WithStrategy(strategy))

			k := key.Bit128()
			r, err := e.Process(nil, f, k, aesgo.CTR, Encrypt)
			require.NoError(t, err)
			require.Equal(t, Succeeded, r.Outcome)
			r, err = e.Process(nil, f, k, aesgo.CTR, Decrypt)
			require.NoError(t, err)
			require.Equal(t, Succeeded, r.Outcome)
			require.Equal(t, plain, readFile(t, fs.Fs, "/file"))

			r, err = e.Wipe(nil, f, 2, false)
			require.NoError(t, err)
			require.Equal(t, Succeeded, r.Outcome)

			require.Zero(t, fs.overlaps.Load())
			require.EqualValues(t, 3, fs.opened.Load())
			require.EqualValues(t, 3, fs.closed.Load())
		})
	}
}

func TestHandleClosedWhenObserverPanics(t *testing.T) {
	fs := &exclusiveFs{Fs: afero.NewMemMapFs()}
	require.NoError(t, afero.WriteFile(fs.Fs, "/file", randomBytes(100), 0o600))
	f, err := Open(fs, "/file")
	require.NoError(t, err)
	f.AddObserver(&recorder{onChunk: func(Progress) { panic("observer failed") }})

	require.PanicsWithValue(t, "observer failed", func() {
		_, _ = New(WithChunkSize(16)).Wipe(nil, f, 1, false)
	})
	require.EqualValues(t, 1, fs.opened.Load())
	require.EqualValues(t, 1, fs.closed.Load())
}

func TestSession(t *testing.T) {
	s := NewSession()
	require.False(t, s.Canceled())
	require.False(t, s.Failed())

	s.Cancel()
	s.fail()
	require.True(t, s.Canceled())
	require.True(t, s.Failed())

	s.Reset()
	require.False(t, s.Canceled())
	require.False(t, s.Failed())
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/dir", 0o700))
	require.NoError(t, afero.WriteFile(fs, "/data/report.tar.gz", []byte("hello"), 0o600))

	f, err := Open(fs, "/data/report.tar.gz")
	require.NoError(t, err)
	require.Equal(t, "report.tar", f.Name)
	require.Equal(t, ".gz", f.Ext)
	require.Equal(t, "report.tar.gz", f.FullName)
	require.Equal(t, "/data/report.tar.gz", f.Path)
	require.EqualValues(t, 5, f.Size)

	_, err = Open(fs, "/data/missing")
	require.True(t, errors.Is(err, ErrNotExist))

	_, err = Open(fs, "")
	require.True(t, errors.Is(err, ErrNotExist))

	_, err = Open(fs, "/data/dir")
	require.True(t, errors.Is(err, ErrNotRegular))
}

func TestRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := writeFile(t, fs, "/victim", []byte("x"))

	require.NoError(t, f.Remove())
	ok, err := afero.Exists(fs, "/victim")
	require.NoError(t, err)
	require.False(t, ok)

	require.Error(t, f.Remove())
}

func TestStrategyParsing(t *testing.T) {
	for _, s := range strategies {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}

	got, err := ParseStrategy("")
	require.NoError(t, err)
	require.Equal(t, Sequential, got)

	_, err = ParseStrategy("parallel")
	require.ErrorContains(t, err, `unknown strategy "parallel"`)
}

func TestChunkSizeIsClamped(t *testing.T) {
	require.Equal(t, 1, New(WithChunkSize(0)).chunkSize)
	require.Equal(t, 1, New(WithChunkSize(-5)).chunkSize)
	require.Equal(t, MaxChunkSize, New(WithChunkSize(MaxChunkSize*4)).chunkSize)
	require.Equal(t, 100, New(WithChunkSize(100)).chunkSize)
	require.Equal(t, MaxChunkSize, New().chunkSize)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "succeeded", Succeeded.String())
	require.Equal(t, "canceled", Canceled.String())
	require.Equal(t, "failed", Failed.String())
	require.Equal(t, "unknown", Outcome(9).String())
}

func TestObserversAreNotifiedOnce(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := writeFile(t, fs, "/file", randomBytes(100))

	var calls []Result
	first := &recorder{}
	f.AddObserver(first)
	f.AddObserver(ObserverFunc(func(r Result) { calls = append(calls, r) }))

	_, err := New().Wipe(nil, f, 1, false)
	require.NoError(t, err)

	require.Equal(t, Succeeded, first.only(t).Outcome)
	require.Len(t, calls, 1)
	require.Equal(t, OpWipe, calls[0].Op)
	require.Equal(t, "/file", calls[0].Path)
}

func TestResultsChannel(t *testing.T) {
	fs := afero.NewMemMapFs()
	results := make(Results, 1)
	require.NoError(t, afero.WriteFile(fs, "/file", []byte("abc"), 0o600))
	f, err := Open(fs, "/file", results)
	require.NoError(t, err)

	_, err = New().Wipe(nil, f, 2, false)
	require.NoError(t, err)

	r := <-results
	require.Equal(t, Succeeded, r.Outcome)
	require.Equal(t, OpWipe, r.Op)
}

func TestScrub(t *testing.T) {
	a, b := []byte{1, 2, 3}, []byte{4}
	scrub(a, b)
	require.Equal(t, []byte{0, 0, 0}, a)
	require.Equal(t, []byte{0}, b)
}

func TestFill(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 100} {
		a, b := make([]byte, n), make([]byte, n)
		fill(rand.New(rand.NewPCG(1, 2)), a)
		fill(rand.New(rand.NewPCG(1, 2)), b)
		require.Equal(t, a, b)
		if n >= 8 {
			require.False(t, bytes.Equal(a, make([]byte, n)))
		}
	}
}

func TestStrategyText(t *testing.T) {
	b, err := Pipelined.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "pipelined", string(b))

	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte("PIPELINED")))
	require.Equal(t, Pipelined, s)
	require.Error(t, s.UnmarshalText([]byte("fast")))
}
