/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package flogging provides named zap loggers that share one process-wide
// level, encoding and output. Loggers obtained before Init pick up the new
// settings, so packages can create their logger at package scope.
package flogging

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encoding selects how log records are rendered.
type Encoding int8

const (
	CONSOLE Encoding = iota
	JSON
	LOGFMT
)

const defaultLevel = zapcore.InfoLevel

// Config is used to provide dependencies to a Logging instance.
type Config struct {
	// Format is "console", "json" or "logfmt". Empty means console.
	Format string

	// Level is a zap level name such as "debug" or "warn". Empty falls back
	// to SHREDDER_LOGGING_LEVEL and then to info.
	Level string

	// Writer is the sink for encoded log records. Defaults to os.Stderr.
	Writer io.Writer
}

// Logging maintains the state shared by every logger it hands out.
type Logging struct {
	level zap.AtomicLevel

	mutex         sync.RWMutex
	encoding      Encoding
	encoderConfig zapcore.EncoderConfig
	writer        zapcore.WriteSyncer
}

// Global is the logging system used by MustGetLogger.
var Global *Logging

func init() {
	l, err := New(Config{})
	if err != nil {
		panic(err)
	}
	Global = l
}

// New creates a new logging system and initializes it with the provided
// configuration.
func New(c Config) (*Logging, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.NameKey = "name"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	s := &Logging{
		level:         zap.NewAtomicLevelAt(defaultLevel),
		encoderConfig: encoderConfig,
	}

	if err := s.Apply(c); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply applies the provided configuration to the logging system.
func (s *Logging) Apply(c Config) error {
	if err := s.SetFormat(c.Format); err != nil {
		return err
	}

	if c.Level == "" {
		c.Level = os.Getenv("SHREDDER_LOGGING_LEVEL")
	}
	if c.Level == "" {
		c.Level = defaultLevel.String()
	}
	if err := s.ActivateLevel(c.Level); err != nil {
		return err
	}

	if c.Writer == nil {
		c.Writer = os.Stderr
	}
	s.SetWriter(c.Writer)

	return nil
}

// ActivateLevel changes the level of every logger created from s.
func (s *Logging) ActivateLevel(level string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return errors.Wrapf(err, "invalid logging level %q", level)
	}
	s.level.SetLevel(l)
	return nil
}

// Level returns the active level.
func (s *Logging) Level() zapcore.Level {
	return s.level.Level()
}

func (s *Logging) SetFormat(format string) error {
	var e Encoding
	switch format {
	case "", "console":
		e = CONSOLE
	case "json":
		e = JSON
	case "logfmt":
		e = LOGFMT
	default:
		return errors.Errorf("unknown logging format %q", format)
	}

	s.mutex.Lock()
	s.encoding = e
	s.mutex.Unlock()
	return nil
}

// SetWriter controls which writer formatted log records are written to.
// Writers, with the exception of an *os.File, need to be safe for concurrent
// use by multiple go routines.
func (s *Logging) SetWriter(w io.Writer) {
	var sw zapcore.WriteSyncer
	switch t := w.(type) {
	case *os.File:
		sw = zapcore.Lock(t)
	case zapcore.WriteSyncer:
		sw = t
	default:
		sw = zapcore.AddSync(w)
	}

	s.mutex.Lock()
	s.writer = sw
	s.mutex.Unlock()
}

// Write satisfies the io.Write contract. It delegates to the writer argument
// of SetWriter or the Writer field of Config.
func (s *Logging) Write(b []byte) (int, error) {
	s.mutex.RLock()
	w := s.writer
	s.mutex.RUnlock()

	return w.Write(b)
}

// Sync satisfies the zapcore.WriteSyncer interface.
func (s *Logging) Sync() error {
	s.mutex.RLock()
	w := s.writer
	s.mutex.RUnlock()

	return w.Sync()
}

// Encoding returns the active encoding.
func (s *Logging) Encoding() Encoding {
	s.mutex.RLock()
	e := s.encoding
	s.mutex.RUnlock()
	return e
}

// ZapLogger instantiates a new zap.Logger with the specified name.
func (s *Logging) ZapLogger(name string) *zap.Logger {
	s.mutex.RLock()
	core := &Core{
		LevelEnabler: s.level,
		Encoders: map[Encoding]zapcore.Encoder{
			CONSOLE: zapcore.NewConsoleEncoder(s.encoderConfig),
			JSON:    zapcore.NewJSONEncoder(s.encoderConfig),
			LOGFMT:  zaplogfmt.NewEncoder(s.encoderConfig),
		},
		Selector: s,
		Output:   s,
	}
	s.mutex.RUnlock()

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).Named(name)
}

// Logger returns a sugared logger with the specified name.
func (s *Logging) Logger(name string) *zap.SugaredLogger {
	return s.ZapLogger(name).Sugar()
}

// Init reconfigures the global logging system.
func Init(c Config) error {
	return Global.Apply(c)
}

// MustGetLogger creates a logger with the specified name from the global
// logging system.
func MustGetLogger(name string) *zap.SugaredLogger {
	return Global.Logger(name)
}
