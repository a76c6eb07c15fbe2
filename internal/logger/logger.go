package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger handles leveled logging to the console with optional file output.
// Console output is human-readable; the file log is logfmt and always
// receives debug lines.
type Logger struct {
	Verbose bool
	out     *log.Logger
	errs    *log.Logger
	file    *fileSink
	fields  []any
}

type fileSink struct {
	mu sync.Mutex
	f  *os.File
	l  *log.Logger
}

// New creates a new Logger writing to stdout, with errors on stderr.
func New(verbose bool) *Logger {
	return newLogger(os.Stdout, os.Stderr, verbose)
}

func newLogger(out, errs io.Writer, verbose bool) *Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &Logger{
		Verbose: verbose,
		out:     log.NewWithOptions(out, log.Options{Level: level}),
		errs:    log.NewWithOptions(errs, log.Options{Level: log.ErrorLevel}),
		file:    &fileSink{},
	}
}

// SetFileLog enables logging to a file
func (l *Logger) SetFileLog(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.setFileWriter(f, f)
	return nil
}

func (l *Logger) setFileWriter(w io.Writer, f *os.File) {
	l.file.mu.Lock()
	defer l.file.mu.Unlock()

	l.file.f = f
	l.file.l = log.NewWithOptions(w, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
}

// With returns a child logger that adds the key-value pairs to every entry.
// The child shares the parent's file log.
func (l *Logger) With(kv ...any) *Logger {
	fields := make([]any, 0, len(l.fields)+len(kv))
	fields = append(fields, l.fields...)
	fields = append(fields, kv...)
	return &Logger{
		Verbose: l.Verbose,
		out:     l.out,
		errs:    l.errs,
		file:    l.file,
		fields:  fields,
	}
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.file.mu.Lock()
	defer l.file.mu.Unlock()

	if l.file.f != nil {
		err := l.file.f.Close()
		l.file.f = nil
		l.file.l = nil
		return err
	}
	return nil
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(log.InfoLevel, format, args...)
}

// Debug logs detailed messages. They reach the console only in verbose
// mode but are always written to the file log.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(log.DebugLevel, format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(log.WarnLevel, format, args...)
}

// Error logs error messages to stderr
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.errs.Log(log.ErrorLevel, msg, l.fields...)
	l.logToFile(log.ErrorLevel, msg)
}

func (l *Logger) log(level log.Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.out.Log(level, msg, l.fields...)
	l.logToFile(level, msg)
}

func (l *Logger) logToFile(level log.Level, msg string) {
	l.file.mu.Lock()
	defer l.file.mu.Unlock()

	if l.file.l != nil {
		l.file.l.Log(level, msg, l.fields...)
	}
}
