// Package logging adapts minilog's multi-logger model: any number of
// independently leveled sinks (stderr, a log file) receive every
// message at or above their configured level, and callers get a
// lightweight Logger handle per named subsystem so call sites read
// "log.Debug(...)" rather than "logging.Debug(name, ...)".
package logging

import (
	golog "log"
	"os"
	"sync"
)

type sink struct {
	out   *golog.Logger
	level Level
}

var (
	mu    sync.RWMutex
	sinks = map[string]*sink{}
)

// AddSink registers a named output (e.g. "stderr", "file") that
// receives every message at level or above, from every Logger.
func AddSink(name string, w *os.File, level Level) {
	mu.Lock()
	defer mu.Unlock()
	sinks[name] = &sink{out: golog.New(w, "", golog.LstdFlags), level: level}
}

// Init wires the standard sinks from CLI-style flags: stderr when
// verbose is true, and an appended logfile when path is non-empty.
func Init(level Level, verbose bool, path string) error {
	if verbose {
		AddSink("stderr", os.Stderr, level)
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0660)
		if err != nil {
			return err
		}
		AddSink("file", f, level)
	}
	return nil
}

// Logger writes tagged messages to every registered sink whose level
// permits it. It carries no state of its own beyond its subsystem tag.
type Logger struct {
	name string
}

// MustGetLogger returns a Logger tagged with name. Unlike minilog's
// AddLogger, this does not register a sink — sinks are global outputs,
// Loggers are just named message sources feeding them.
func MustGetLogger(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	for _, s := range sinks {
		if level < s.level {
			continue
		}
		s.out.Printf("["+level.String()+"] "+l.name+": "+format, args...)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// Fatal logs at FATAL level and exits, matching minilog's LogAll
// behavior of calling os.Exit(1) on a fatal message.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args...)
	os.Exit(1)
}
