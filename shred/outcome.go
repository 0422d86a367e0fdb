package shred

import "time"

// Outcome is the terminal state of a Process or Wipe call.
type Outcome int

const (
	Succeeded Outcome = iota
	Canceled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation names what a long-running call was doing.
type Operation string

const (
	OpEncrypt Operation = "encrypt"
	OpDecrypt Operation = "decrypt"
	OpWipe    Operation = "wipe"
)

// Result is delivered exactly once per Process or Wipe call. Err is set only
// when Outcome is Failed. A canceled or failed call leaves the chunks written
// so far in place: the file is partially transformed.
type Result struct {
	Op      Operation
	Path    string
	Outcome Outcome
	Err     error
	Elapsed time.Duration
}

// Progress is reported after every chunk written. Pass is 1-based and
// Passes is 1 for the cipher path.
type Progress struct {
	Op     Operation
	Path   string
	Pass   int
	Passes int
	Done   int64
	Total  int64
}

// Observer receives the terminal result of an operation.
type Observer interface {
	Notify(Result)
}

// ProgressObserver is implemented by observers that also want per-chunk
// progress. With the pipelined strategy Progress is called from the writer
// goroutine.
type ProgressObserver interface {
	Progress(Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

func (f ObserverFunc) Notify(r Result) {
	f(r)
}
