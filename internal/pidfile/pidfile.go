// Package pidfile implements the advisory single-instance process lock
// described in spec §5 and §6: one PID file, one flock(2) held for the
// process lifetime.
package pidfile

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// DefaultPath is the PID file location used when the caller does not
// override it (spec §6: "/tmp/run/<component>.pid").
const DefaultPath = "/tmp/run/pmlogd.pid"

// Lock holds an acquired advisory lock on a PID file. The zero value is
// not usable; obtain one via Acquire.
type Lock struct {
	path string
	fd   int
}

// Acquire opens (creating if necessary) the PID file at path, takes a
// non-blocking exclusive flock, and writes the current process ID into
// it. It returns an error if another process already holds the lock or
// if the file cannot be opened - both are fatal startup errors per §7,
// and the caller is expected to exit non-zero.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		path = DefaultPath
	}

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("pidfile: open %s: %w", path, err)
	}

	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pidfile: %s already locked: %w", path, err)
	}

	if err := unix.Ftruncate(fd, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pidfile: truncate %s: %w", path, err)
	}
	if _, err := unix.Write(fd, []byte(strconv.Itoa(os.Getpid()))); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pidfile: write %s: %w", path, err)
	}

	return &Lock{path: path, fd: fd}, nil
}

// Release unlocks and closes the PID file, and removes it from disk.
// Errors removing the file are not considered fatal; the lock itself is
// always released.
func (l *Lock) Release() error {
	err := unix.Close(l.fd)
	_ = os.Remove(l.path)
	return err
}
