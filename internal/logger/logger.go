// Package logger provides leveled logging on top of the standard log package.
// Messages below the configured level are dropped; the rest are written with a
// [LEVEL] prefix so they can be grepped in container logs.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

var (
	mu    sync.RWMutex
	level = InfoLevel
	std   = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
)

// Formats accepted by Init.
const (
	FormatText  = "text"  // timestamp plus file:line
	FormatPlain = "plain" // timestamp only
)

// Init sets the minimum level and output format.
func Init(lvl string, format string) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == FormatText {
		flags |= log.Lshortfile
	}

	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(lvl)
	std.SetFlags(flags)
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

func output(l Level, prefix, format string, args ...any) {
	mu.RLock()
	enabled := level <= l
	mu.RUnlock()
	if !enabled {
		return
	}
	_ = std.Output(3, fmt.Sprintf(prefix+format, args...))
}

// Debug logs at DebugLevel.
func Debug(format string, args ...any) { output(DebugLevel, "[DEBUG] ", format, args...) }

// Info logs at InfoLevel.
func Info(format string, args ...any) { output(InfoLevel, "[INFO] ", format, args...) }

// Warn logs at WarnLevel.
func Warn(format string, args ...any) { output(WarnLevel, "[WARN] ", format, args...) }

// Error logs at ErrorLevel.
func Error(format string, args ...any) { output(ErrorLevel, "[ERROR] ", format, args...) }

