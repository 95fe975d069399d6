package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/verdala/va-client/internal/messages"
)

// HeldError reports that another va process holds the machine lock.
type HeldError struct {
	Path string
}

func (e *HeldError) Error() string {
	return fmt.Sprintf(messages.LockHeldFmt, e.Path)
}

// MachineLock serializes mutating operations on this machine. The design
// allows at most one attach/enable/disable orchestration in flight; this is
// the external enforcement of that assumption.
type MachineLock struct {
	fl *flock.Flock
}

// Acquire takes the machine lock without blocking. It returns HeldError
// when another process already holds it.
func Acquire(path string) (*MachineLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf(messages.LockOpenErrFmt, path, err)
	}
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenErrFmt, path, err)
	}
	if !locked {
		return nil, &HeldError{Path: path}
	}
	return &MachineLock{fl: fl}, nil
}

// Release drops the lock.
func (l *MachineLock) Release() error {
	return l.fl.Unlock()
}
