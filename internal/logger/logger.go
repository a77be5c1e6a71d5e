package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

// The TUI owns the terminal, so all log output goes to a file under
// the user's home directory instead of stderr.
const (
	logDirName  = ".beatline"
	logFileName = "debug.log"
	maxLogSize  = 10 << 20
)

var (
	logFile *os.File
	logPath string
)

// Init points the standard logger at ~/.beatline/debug.log, rotating
// the previous file away once it grows past maxLogSize.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	dir := filepath.Join(home, logDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logPath = filepath.Join(dir, logFileName)

	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := fmt.Sprintf("%s.%s", logPath, time.Now().Format("20060102-150405"))
		_ = os.Rename(logPath, rotated)
	}

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Printf("[INFO] logging to %s", logPath)
	return nil
}

// Close flushes and closes the log file.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// LogPanic records a recovered panic value with its stack trace.
func LogPanic(r any) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// Path returns the active log file path, empty before Init.
func Path() string {
	return logPath
}
