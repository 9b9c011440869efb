// Copyright 2025 The Contract Ledger Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Verify DefaultLogger implements Logger at compile time.
var _ Logger = (*DefaultLogger)(nil)

// DefaultLogger writes leveled text logs to a writer. Safe for
// concurrent use.
type DefaultLogger struct {
	mu        sync.Mutex
	level     LogLevel
	out       io.Writer
	showLevel bool
}

// NewLogger creates a logger writing to stderr. If verbose is true the
// level is LevelDebug, otherwise LevelInfo.
func NewLogger(verbose bool) *DefaultLogger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return &DefaultLogger{level: level, out: os.Stderr}
}

// NewLoggerTo creates a logger writing to the given writer at the
// given level, with the level prefix shown.
func NewLoggerTo(out io.Writer, level LogLevel) *DefaultLogger {
	return &DefaultLogger{level: level, out: out, showLevel: true}
}

// GetLevel returns the current minimum log level.
func (l *DefaultLogger) GetLevel() LogLevel { return l.level }

// Debug logs a message at debug level.
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs a message at info level.
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a message at warn level.
func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs a message at error level.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *DefaultLogger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.showLevel {
		msg = fmt.Sprintf("[%s] %s", strings.ToUpper(level.String()), msg)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, msg)
}
