package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Logger writes run diagnostics to stderr and, when a log directory is
// configured, to a dated log file alongside. Debug lines only appear when
// verbose is on.
type Logger struct {
	verbose bool
	out     io.Writer
	file    *os.File
}

// NewLogger builds a Logger. When logDir is non-empty a feedwatch_YYYYMMDD.log
// file is opened (append mode) inside it; failures fall back to stderr only.
func NewLogger(verbose bool, logDir string, now time.Time) *Logger {
	l := &Logger{verbose: verbose, out: os.Stderr}
	if logDir == "" {
		return l
	}
	name := fmt.Sprintf("feedwatch_%s.log", now.Format("20060102"))
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		LogWarn("opening log file", err)
		return l
	}
	l.file = f
	l.out = io.MultiWriter(os.Stderr, f)
	return l
}

// Debugf logs a formatted line only when verbose mode is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.write("DEBUG", format, args...)
}

// Infof logs a formatted informational line.
func (l *Logger) Infof(format string, args ...any) {
	l.write("INFO", format, args...)
}

// Warnf logs a formatted warning line.
func (l *Logger) Warnf(format string, args ...any) {
	l.write("WARN", format, args...)
}

func (l *Logger) write(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(l.out, "%s %s %s\n", time.Now().Format(time.RFC3339), level, msg)
}

// Close releases the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
