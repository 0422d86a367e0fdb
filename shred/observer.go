package shred

import (
	"go.uber.org/zap"
)

// LogObserver writes every result to a logger.
type LogObserver struct {
	Logger *zap.SugaredLogger
}

func (l *LogObserver) Notify(r Result) {
	log := l.Logger
	if log == nil {
		log = logger
	}

	kv := []interface{}{"op", r.Op, "path", r.Path, "outcome", r.Outcome, "elapsed", r.Elapsed}
	switch r.Outcome {
	case Succeeded:
		log.Infow("file processed", kv...)
	case Canceled:
		log.Warnw("file processing canceled", kv...)
	default:
		log.Errorw("file processing failed", append(kv, "error", r.Err)...)
	}
}

// Results collects results in a channel so another goroutine can wait for
// them. Notify blocks when the channel is full.
type Results chan Result

func (c Results) Notify(r Result) {
	c <- r
}
