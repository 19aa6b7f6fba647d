// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is a small leveled-logging shim, built in the shape of the
// logger the teacher module pulled in as github.com/saferwall/pe/log
// (NewStdLogger / NewFilter / FilterLevel / NewHelper) but kept in-module
// since it was never a real external dependency for the teacher either —
// just a repo-local package it happened to keep under its own path.
package log

import (
	"fmt"
	"io"
	"log"
)

// Level orders log severities from most to least verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the minimal sink every log call eventually reaches.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes to an io.Writer via the standard library logger.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger builds a Logger that writes to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, keyvals ...interface{}) error {
	s.l.Println(append([]interface{}{levelString(level)}, keyvals...)...)
	return nil
}

func levelString(l Level) string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// filter drops log calls below a minimum level before they reach the
// wrapped Logger.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with a level filter.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper adds leveled, printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps a Logger with Debugf/Infof/Warnf/Errorf.
func NewHelper(logger Logger) *Helper {
	if logger == nil {
		logger = NewStdLogger(io.Discard)
	}
	return &Helper{logger: logger}
}

func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

func (h *Helper) Infof(format string, args ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, args...))
}

func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}
