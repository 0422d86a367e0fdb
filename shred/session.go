package shred

import "sync/atomic"

// Session carries the cancel and failure flags of one or more operations.
// Both flags may be read and set from any goroutine. Cancel takes effect at
// the next chunk boundary.
type Session struct {
	canceled atomic.Bool
	failed   atomic.Bool
}

func NewSession() *Session {
	return &Session{}
}

// Cancel asks every operation running under s to stop.
func (s *Session) Cancel() {
	s.canceled.Store(true)
}

func (s *Session) Canceled() bool {
	return s.canceled.Load()
}

// Failed reports whether an operation under s ended with an I/O failure.
func (s *Session) Failed() bool {
	return s.failed.Load()
}

// Reset clears both flags so the session can be reused.
func (s *Session) Reset() {
	s.canceled.Store(false)
	s.failed.Store(false)
}

func (s *Session) fail() {
	s.failed.Store(true)
}
