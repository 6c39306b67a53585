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

package daemonctl

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tombarlow/guardian/internal/commands/shared"
	"github.com/tombarlow/guardian/internal/daemon"
)

// skipOnSpawnError skips the test when the sandbox refuses to let us spawn
// a child process, mirroring internal/daemon's own spawn tests.
func skipOnSpawnError(t *testing.T, err error) {
	t.Helper()
	if err != nil && strings.Contains(err.Error(), "operation not permitted") {
		t.Skipf("spawning a child process is not permitted in this sandbox: %v", err)
	}
}

func init() {
	// Registered at package init so it survives into the re-exec'd worker
	// process started by Start(), which is a distinct OS process with its
	// own fresh copy of the callback registry. The worker stays up long
	// enough for the tests to observe it alive and stop it.
	daemon.RegisterCallback("daemonctl-test-callback", func() error {
		time.Sleep(10 * time.Second)
		return nil
	})
}

func TestStartCommand_MissingPidfile(t *testing.T) {
	cmd := NewStartCommand()
	cmd.SetArgs(nil)

	err := cmd.Execute()
	var exitErr *shared.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() error = %v, want *shared.ExitError", err)
	}
	if exitErr.Code != shared.ExitValidationFailed {
		t.Errorf("exit code = %d, want %d", exitErr.Code, shared.ExitValidationFailed)
	}
}

func TestStartCommand_CallbackWorker(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "web.pid")

	cmd := NewStartCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--pidfile", pidfile, "--callback", "daemonctl-test-callback"})

	err := cmd.Execute()
	skipOnSpawnError(t, err)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "started") {
		t.Errorf("output = %q, want it to mention 'started'", out.String())
	}

	if _, _, alive := daemon.CheckPID(pidfile); !alive {
		t.Error("CheckPID() reports the daemon as not alive right after start")
	}

	if _, err := daemon.Stop(pidfile, daemon.StopOptions{Force: true}); err != nil {
		t.Fatalf("cleanup Stop() error = %v", err)
	}
}

func TestStartCommand_AlreadyRunningMapsToExitCode(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "web.pid")

	first := NewStartCommand()
	first.SetArgs([]string{"--pidfile", pidfile, "--callback", "daemonctl-test-callback"})
	err := first.Execute()
	skipOnSpawnError(t, err)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	defer daemon.Stop(pidfile, daemon.StopOptions{Force: true})

	second := NewStartCommand()
	second.SetArgs([]string{"--pidfile", pidfile, "--callback", "daemonctl-test-callback"})
	err = second.Execute()

	var exitErr *shared.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("second Execute() error = %v, want *shared.ExitError", err)
	}
	if exitErr.Code != shared.ExitAlreadyRunning {
		t.Errorf("exit code = %d, want %d", exitErr.Code, shared.ExitAlreadyRunning)
	}
}
