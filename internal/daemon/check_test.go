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
	"path/filepath"
	"testing"
)

func TestCheck_NoPidfile(t *testing.T) {
	dir := t.TempDir()
	if Check(filepath.Join(dir, "never.pid")) {
		t.Error("Check() = true for a pidfile that was never written")
	}
}

func TestCheck_LockHeld(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "svc.pid")
	if err := writeRecord(pidfile, record{PID: 1, GuardPID: 2}); err != nil {
		t.Fatal(err)
	}

	h, err := acquireExclusive(pidfile)
	if err != nil {
		t.Fatal(err)
	}
	defer h.release()

	if !Check(pidfile) {
		t.Error("Check() = false while lock is held, want true")
	}
}

func TestCheck_StalePidfileNoLock(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "svc.pid")
	if err := writeRecord(pidfile, record{PID: 1, GuardPID: 2}); err != nil {
		t.Fatal(err)
	}

	if Check(pidfile) {
		t.Error("Check() = true for a pidfile whose lock nobody holds")
	}
}

func TestCheckPID(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "svc.pid")

	t.Run("missing pidfile", func(t *testing.T) {
		pid, guardPID, alive := CheckPID(filepath.Join(dir, "missing.pid"))
		if pid != 0 || guardPID != 0 || alive {
			t.Errorf("CheckPID() = (%d, %d, %v), want (0, 0, false)", pid, guardPID, alive)
		}
	})

	t.Run("alive", func(t *testing.T) {
		if err := writeRecord(pidfile, record{PID: 42, GuardPID: 43}); err != nil {
			t.Fatal(err)
		}
		h, err := acquireExclusive(pidfile)
		if err != nil {
			t.Fatal(err)
		}
		defer h.release()

		pid, guardPID, alive := CheckPID(pidfile)
		if pid != 42 || guardPID != 43 || !alive {
			t.Errorf("CheckPID() = (%d, %d, %v), want (42, 43, true)", pid, guardPID, alive)
		}
	})
}
