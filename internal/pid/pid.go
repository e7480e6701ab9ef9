// Package pid guards against running two daemons over the same store.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/wattd/internal/errors"
)

const pidFile = "wattd.pid"

// Path returns the PID file location in dir, or in the temp dir when dir
// is empty
func Path(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, pidFile)
}

// Write records the current process ID in dir. It fails with
// ErrAlreadyRunning if the recorded process is still alive; stale or
// unreadable files are replaced.
func Write(dir string) error {
	errFactory := errors.New()
	path := Path(dir)
	self := os.Getpid()

	if raw, err := os.ReadFile(path); err == nil {
		if other, err := strconv.Atoi(strings.TrimSpace(string(raw))); err == nil && other != self && alive(other) {
			return errFactory.WithData(errors.ErrAlreadyRunning, other)
		}
	} else if !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(self)), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove deletes the PID file in dir. A missing file is not an error.
func Remove(dir string) error {
	if err := os.Remove(Path(dir)); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}
	return nil
}

func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
