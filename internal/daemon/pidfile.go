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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// record is the parsed content of a pidfile, in either the legacy
// bare-integer format or the newer line-oriented key/value format.
type record struct {
	// PID is the worker's process ID.
	PID int
	// GuardPID is the guardian's own process ID. Zero in legacy pidfiles,
	// which predate the guardian/worker split and only recorded the
	// single supervised process.
	GuardPID int
	// Legacy is true if the file held a bare decimal integer rather than
	// "key value" lines.
	Legacy bool
}

// lockPath derives the sidecar lock file path for a pidfile. Guardian
// locks this file, not the pidfile itself, so that the pidfile's content
// can be atomically replaced (unlink+rename) without ever dropping the
// lock that a concurrent Check() might be probing.
func lockPath(pidfilePath string) string {
	return pidfilePath + ".lock"
}

// readRecord parses a pidfile, accepting both the legacy bare-integer
// format and the current "key value\n" format. A pidfile with no
// recognized "pid" line is invalid.
func readRecord(path string) (record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record{}, err
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return record{}, fmt.Errorf("empty pidfile %s", path)
	}

	if pid, err := strconv.Atoi(trimmed); err == nil {
		if pid <= 0 {
			return record{}, fmt.Errorf("invalid pid %d in %s", pid, path)
		}
		return record{PID: pid, Legacy: true}, nil
	}

	rec := record{}
	sc := bufio.NewScanner(strings.NewReader(trimmed))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			continue
		}
		key, value := fields[0], strings.TrimSpace(fields[1])
		switch key {
		case "pid":
			n, err := strconv.Atoi(value)
			if err != nil {
				return record{}, fmt.Errorf("invalid pid line in %s: %w", path, err)
			}
			rec.PID = n
		case "guard_pid":
			n, err := strconv.Atoi(value)
			if err != nil {
				return record{}, fmt.Errorf("invalid guard_pid line in %s: %w", path, err)
			}
			rec.GuardPID = n
		case "format":
			// Recorded for forward compatibility; current readers don't
			// branch on it since "pid"/"guard_pid" keys are self-describing.
		}
	}
	if err := sc.Err(); err != nil {
		return record{}, err
	}
	if rec.PID == 0 {
		return record{}, fmt.Errorf("no pid line found in %s", path)
	}
	return rec, nil
}

// writeRecord atomically publishes rec to path: it writes to a temp file
// in the same directory, fsyncs it, then renames it into place. The
// rename is atomic on the same filesystem, so a concurrent reader never
// observes a half-written pidfile.
func writeRecord(path string, rec record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &guardianerrors.PreconditionError{Check: "pidfile directory", Path: dir, Cause: err}
	}

	tmp, err := os.CreateTemp(dir, ".pidfile-*")
	if err != nil {
		return &guardianerrors.PreconditionError{Check: "pidfile temp file", Path: dir, Cause: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	body := fmt.Sprintf("format 2\npid %d\nguard_pid %d\n", rec.PID, rec.GuardPID)
	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing pidfile content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing pidfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing pidfile temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("setting pidfile permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("publishing pidfile: %w", err)
	}
	return nil
}

// removeRecord deletes a pidfile and its lock sidecar. Missing files are
// not an error — Stop and cleanup paths call this unconditionally.
func removeRecord(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pidfile %s: %w", path, err)
	}
	if err := os.Remove(lockPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file %s: %w", lockPath(path), err)
	}
	return nil
}
