package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/backmassage/hlsmill/internal/config"
)

// Level tags. Color rendering follows the global switch set by term.Configure.
var (
	infoTag    = color.New(color.FgHiBlue, color.Bold)
	successTag = color.New(color.FgHiGreen, color.Bold)
	warnTag    = color.New(color.FgHiYellow, color.Bold)
	errorTag   = color.New(color.FgHiRed, color.Bold)
	debugTag   = color.New(color.FgHiCyan, color.Bold)
)

// Logger provides leveled, optionally colored logging with an optional
// file sink. Quiet mode suppresses Info and Success on the console but
// still writes them to the file sink.
type Logger struct {
	mu      sync.Mutex
	quiet   bool
	verbose bool
	file    *os.File
}

// New builds a Logger from cfg, opening the log file when one is
// configured. Call Close when done if Logging.File was set.
func New(cfg *config.Config) (*Logger, error) {
	l := &Logger{
		quiet:   cfg.Logging.Quiet,
		verbose: cfg.Logging.Debug,
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level string, tag *color.Color, suppress bool, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()

	plain := ts + " [" + level + "] " + text + "\n"
	if !suppress {
		out := os.Stdout
		if level == "ERROR" {
			out = os.Stderr
		}
		_, _ = io.WriteString(out, ts+" "+tag.Sprint("["+level+"]")+" "+text+"\n")
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs at INFO level (blue). Suppressed on the console in quiet mode.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", infoTag, l.quiet, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green). Suppressed on the console in quiet mode.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", successTag, l.quiet, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", warnTag, false, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", errorTag, false, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when debug output is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line("DEBUG", debugTag, false, fmt.Sprintf(format, args...))
}
