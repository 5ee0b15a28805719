/*
NAME
  logging.go

DESCRIPTION
  logging.go provides the Logger interface used throughout this module,
  and a file-rotating implementation backed by lumberjack.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package logging provides the small leveled-logging interface that the
// rest of this module logs through, plus a production implementation.
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Level is a logging verbosity threshold.
type Level int8

// Logging levels, lowest to highest severity.
const (
	Debug Level = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is the leveled logger interface used by every package in this
// module. Callers pass alternating key/value pairs in params, mirroring
// the calling convention of the host environment's own structured logger.
type Logger interface {
	Debug(msg string, params ...interface{})
	Info(msg string, params ...interface{})
	Warning(msg string, params ...interface{})
	Error(msg string, params ...interface{})
	Fatal(msg string, params ...interface{})
	SetLevel(l Level)
}

// FileLogger is a Logger that writes to a rotating log file using
// lumberjack, falling back to stderr when no file is configured.
type FileLogger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
	roll  *lumberjack.Logger
}

// New returns a FileLogger that rotates logs at path according to
// maxSizeMB (megabytes), maxBackups, and maxAgeDays. If path is empty,
// the logger writes to stderr instead.
func New(path string, maxSizeMB, maxBackups, maxAgeDays int) *FileLogger {
	fl := &FileLogger{level: Info}
	if path == "" {
		fl.out = log.New(os.Stderr, "", log.LstdFlags)
		return fl
	}
	fl.roll = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	fl.out = log.New(fl.roll, "", log.LstdFlags)
	return fl
}

// SetLevel sets the minimum level that will be written out.
func (fl *FileLogger) SetLevel(l Level) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.level = l
}

func (fl *FileLogger) log(l Level, tag, msg string, params ...interface{}) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if l < fl.level {
		return
	}
	fl.out.Println(format(tag, msg, params))
}

func (fl *FileLogger) Debug(msg string, params ...interface{})   { fl.log(Debug, "DEBUG", msg, params...) }
func (fl *FileLogger) Info(msg string, params ...interface{})    { fl.log(Info, "INFO", msg, params...) }
func (fl *FileLogger) Warning(msg string, params ...interface{}) { fl.log(Warning, "WARN", msg, params...) }
func (fl *FileLogger) Error(msg string, params ...interface{})   { fl.log(Error, "ERROR", msg, params...) }
func (fl *FileLogger) Fatal(msg string, params ...interface{})   { fl.log(Fatal, "FATAL", msg, params...) }

// format renders a message and its key/value params as a single line.
func format(tag, msg string, params []interface{}) string {
	s := tag + ": " + msg
	for i := 0; i+1 < len(params); i += 2 {
		s += fmt.Sprintf(" %v=%v", params[i], params[i+1])
	}
	return s
}

// TestLogger adapts *testing.T (or any type with a Logf method) to Logger,
// matching the teacher's logging.TestLogger convention of passing *testing.T
// directly into constructors that expect a Logger.
type TestLogger struct {
	T interface{ Logf(string, ...interface{}) }
}

func NewTest(t interface{ Logf(string, ...interface{}) }) *TestLogger { return &TestLogger{T: t} }

func (tl *TestLogger) Debug(msg string, params ...interface{}) { tl.T.Logf("%s", format("DEBUG", msg, params)) }
func (tl *TestLogger) Info(msg string, params ...interface{})  { tl.T.Logf("%s", format("INFO", msg, params)) }
func (tl *TestLogger) Warning(msg string, params ...interface{}) {
	tl.T.Logf("%s", format("WARN", msg, params))
}
func (tl *TestLogger) Error(msg string, params ...interface{}) { tl.T.Logf("%s", format("ERROR", msg, params)) }
func (tl *TestLogger) Fatal(msg string, params ...interface{}) { tl.T.Logf("%s", format("FATAL", msg, params)) }
func (tl *TestLogger) SetLevel(Level)                          {}
