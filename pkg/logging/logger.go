package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Level is the minimum severity a logger writes.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// Logger writes leveled lines for one thazh component. All loggers of a
// process share a single file in the log directory (~/.thazh/logs unless
// SetDirectory was called first) and the process-wide level set by SetLevel.
type Logger struct {
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	// processID names the log file; one per process
	processID     string
	processIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error

	level atomic.Int32
)

func init() {
	level.Store(int32(LevelInfo))
}

func getProcessID() string {
	processIDOnce.Do(func() {
		processID = uuid.New().String()
	})
	return processID
}

// SetDirectory overrides the log directory. It only has an effect when
// called before the first logger is created.
func SetDirectory(dir string) {
	if dir != "" && logDir == "" {
		logDir = dir
	}
}

// SetLevel sets the minimum severity written by every logger.
func SetLevel(l Level) {
	level.Store(int32(l))
}

func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".thazh", "logs")
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for component writing to
// <log dir>/<process-id>-thazh.log.
//
// If the log directory or file cannot be opened it returns the error along
// with a logger that writes to stderr.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	logPath := filepath.Join(logDir, getProcessID()+"-thazh.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

// Discard returns a logger that drops everything written to it.
func Discard(component string) *Logger {
	return &Logger{
		component: component,
		logger:    log.New(io.Discard, "", 0),
	}
}

func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: file logging unavailable, using stderr: %v", err)
	return &Logger{
		component: component,
		logger:    logger,
	}
}

func (l *Logger) write(lvl Level, format string, v ...any) {
	if lvl < Level(level.Load()) {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, lvl, fmt.Sprintf(format, v...))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Println(line)
}

func (l *Logger) Debugf(format string, v ...any) { l.write(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...any)  { l.write(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...any)  { l.write(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...any) { l.write(LevelError, format, v...) }

// LogPath returns the log file path, or "" for discarding and stderr loggers.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
