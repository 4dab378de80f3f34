package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	debugFile *os.File
	debugOnce sync.Once
	logsDir   string
	mu        sync.RWMutex
	writeMu   sync.Mutex
)

// ConfigureDebug sets the directory for debug logs
func ConfigureDebug(dir string) {
	mu.Lock()
	defer mu.Unlock()
	logsDir = dir
}

// Debug writes a message to debug.log file in the configured directory
func Debug(format string, args ...any) {
	// add timestamp to each debug message
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	mu.RLock()
	dir := logsDir
	mu.RUnlock()

	// If no logs directory is configured, do nothing
	if dir == "" {
		return
	}

	debugOnce.Do(func() {
		_ = os.MkdirAll(dir, 0o755)
		debugFile, _ = os.Create(filepath.Join(dir, fmt.Sprintf("debug-%s.log", time.Now().Format("20060102-150405"))))
	})

	if debugFile != nil {
		writeMu.Lock()
		fmt.Fprintf(debugFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
		writeMu.Unlock()
	}
}

// CleanupLogs removes all but the newest keep debug logs in dir. Log names
// embed their start time, so lexical order is chronological.
func CleanupLogs(dir string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var logs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "debug-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		logs = append(logs, name)
	}
	if len(logs) <= keep {
		return nil
	}

	sort.Strings(logs)
	for _, name := range logs[:len(logs)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
