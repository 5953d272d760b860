// SPDX-License-Identifier: MIT
//
// Package log is the process-wide, level-gated logger. The level is stored
// atomically so the frame loop can check it without locking; the output can be
// redirected when the terminal renderer owns the screen.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// Width of the longest level name, used to align messages.
const levelWidth = 5

// String returns the upper-case level name.
func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name (case-insensitive, "warning" accepted) to a
// LogLevel. Unknown names return LevelInfo and false.
func ParseLevel(name string) (LogLevel, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return LevelWarn, true
	}
	for l, n := range levelNames {
		if n == name {
			return LogLevel(l), true
		}
	}
	return LevelInfo, false
}

var (
	currentLevel atomic.Uint32

	// Microseconds, frame timing is sub-millisecond.
	logger = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)
)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel returns the global logging level.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects all log output. The terminal renderer points this at a
// file while it owns the screen.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Enabled reports whether messages at level would be written. Callers use it
// to skip building expensive debug arguments inside the frame loop.
func Enabled(level LogLevel) bool {
	return level >= GetLevel()
}

func write(level LogLevel, msg string) {
	name := level.String()
	logger.Printf("[%s]%*s %s", name, levelWidth-len(name), "", msg)
}

func logf(level LogLevel, format string, v []any) {
	if Enabled(level) {
		write(level, fmt.Sprintf(format, v...))
	}
}

func logln(level LogLevel, v []any) {
	if Enabled(level) {
		write(level, fmt.Sprint(v...))
	}
}

func Debugf(format string, v ...any) { logf(LevelDebug, format, v) }
func Infof(format string, v ...any)  { logf(LevelInfo, format, v) }
func Warnf(format string, v ...any)  { logf(LevelWarn, format, v) }
func Errorf(format string, v ...any) { logf(LevelError, format, v) }

func Debug(v ...any) { logln(LevelDebug, v) }
func Info(v ...any)  { logln(LevelInfo, v) }
func Warn(v ...any)  { logln(LevelWarn, v) }
func Error(v ...any) { logln(LevelError, v) }

// Fatalf logs regardless of the level and exits with status 1.
func Fatalf(format string, v ...any) {
	write(LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Fatal logs regardless of the level and exits with status 1.
func Fatal(v ...any) {
	write(LevelFatal, fmt.Sprint(v...))
	os.Exit(1)
}
