// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// lockHandle wraps an open, exclusively-locked file. Its lifetime is the
// lifetime of the "daemon is running" fact: the kernel releases the lock
// (and thus the claim of liveness) the instant the holding process exits
// for any reason, including SIGKILL or a crash, which is what makes the
// lock — not the pidfile's mere existence — the liveness oracle.
type lockHandle struct {
	file *os.File
}

// acquireExclusive opens (creating if necessary) the lock sidecar for
// pidfilePath and takes a non-blocking exclusive flock on it. It returns
// a *guardianerrors.LockContentionError if the lock is already held.
func acquireExclusive(pidfilePath string) (*lockHandle, error) {
	path := lockPath(pidfilePath)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, &guardianerrors.PreconditionError{Check: "lock directory", Path: filepath.Dir(path), Cause: err}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file %s: %w", path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
			return nil, &guardianerrors.LockContentionError{Pidfile: pidfilePath}
		}
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}

	return &lockHandle{file: f}, nil
}

// release drops the exclusive lock and closes the file. The guardian never
// calls it: its lock is held until the guardian process exits. Check's
// probe (probeExclusive below) does its own explicit unlock instead.
func (h *lockHandle) release() error {
	if h == nil || h.file == nil {
		return nil
	}
	syscall.Flock(int(h.file.Fd()), syscall.LOCK_UN)
	return h.file.Close()
}

// probeExclusive answers "is anyone holding the exclusive lock on this
// pidfile's sidecar right now?" without disturbing an existing holder: it
// attempts a non-blocking acquisition and, if it succeeds, immediately
// releases the lock again (the probe must never itself become the new
// holder). It never blocks and never returns an error for "not running" —
// that case is reported as (false, nil).
func probeExclusive(pidfilePath string) (held bool, err error) {
	path := lockPath(pidfilePath)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return false, fmt.Errorf("opening lock file %s: %w", path, err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if err == syscall.EWOULDBLOCK {
			return true, nil
		}
		return false, fmt.Errorf("probing lock %s: %w", path, err)
	}
	// We are now the holder of a lock nobody else held. Release
	// immediately: acquiring for the probe must not itself count as
	// starting the daemon.
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	return false, nil
}
