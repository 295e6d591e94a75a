package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/jinndb/jinn/pkg/fs"
)

// lockTimeout bounds how long the CLI waits for an already-open session on
// the same file before giving up.
const lockTimeout = 5 * time.Second

var (
	errSessionLockTimeout = errors.New("another jinn session is using this file")
	errSessionLockOpen    = errors.New("failed to open lock file")
)

// sessionLock is an advisory, CLI-level guard. jinn's engine itself never
// locks its file (see the "no concurrent writers" non-goal); this exists
// only so two `jinn` REPL invocations against the same path fail fast with
// a clear error instead of silently racing each other's writes.
type sessionLock struct {
	path string
	file fs.File
}

// acquireSessionLock takes an exclusive flock on path+".lock", retrying
// until timeout elapses.
func acquireSessionLock(path string, timeout time.Duration) (*sessionLock, error) {
	lockPath := path + ".lock"

	file, err := fs.NewReal().OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // path is caller-controlled CLI input
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSessionLockOpen, err)
	}

	deadline := time.Now().Add(timeout)

	const retryInterval = 10 * time.Millisecond

	for {
		err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &sessionLock{path: lockPath, file: file}, nil
		}

		if time.Now().After(deadline) {
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", errSessionLockTimeout, path)
		}

		time.Sleep(retryInterval)
	}
}

// release unlocks and closes the lock file. It does not remove it; another
// session may be waiting on the same inode.
func (l *sessionLock) release() {
	if l.file != nil {
		_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		_ = l.file.Close()
	}
}
