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
	"syscall"
	"time"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// pollInterval is how often Stop re-probes the lock while waiting for a
// guardian to shut its worker down and exit.
const pollInterval = 100 * time.Millisecond

// Stop implements the daemon stop protocol. It reads the pidfile; if the
// pidfile is missing or unreadable it returns (NotRunning, nil). If the
// daemon it names isn't currently alive, Stop removes the stale record
// and returns (NotRunning, nil). Otherwise it signals guard_pid (the guardian
// process, and only the guardian) with SIGTERM, polls Check() until the
// lock is released or opts.Timeout elapses, and — if opts.Force is set —
// escalates to SIGKILL against guard_pid and waits again before giving up
// with a StopTimeoutError.
//
// Stop never signals the worker directly: the worker runs in its own
// process group (see buildWorkerCmd), so a signal aimed at guard_pid
// alone cannot reach it. The guardian alone is responsible for
// SIGTERM/SIGKILL of its worker, mediated by term_timeout — this is what
// makes term_timeout == 0 actually suppress the worker ever seeing
// SIGTERM (see stopWorker).
func Stop(pidfilePath string, opts StopOptions) (Status, error) {
	lifecycle := NewLifecycleLogger(opts.LifecycleLog)

	rec, err := readRecord(pidfilePath)
	if err != nil {
		return NotRunning, nil
	}

	lifecycle.Log(LifecycleEvent{Event: "stop_requested", Pidfile: pidfilePath, PID: rec.PID, GuardPID: rec.GuardPID})

	if !Check(pidfilePath) {
		removeRecord(pidfilePath)
		lifecycle.Log(LifecycleEvent{Event: "stop_succeeded", Pidfile: pidfilePath, PID: rec.PID, Success: true, Message: "daemon was not alive"})
		return NotRunning, nil
	}

	guardPID := rec.GuardPID
	if guardPID == 0 {
		// Legacy pidfile: no separate guardian PID was ever recorded,
		// so the best we can do is signal the tracked PID directly.
		guardPID = rec.PID
	}

	if opts.Timeout > 0 {
		if err := syscall.Kill(guardPID, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
			return NotRunning, fmt.Errorf("sending SIGTERM to guardian %d: %w", guardPID, err)
		}
		if waitForRelease(pidfilePath, opts.Timeout) {
			lifecycle.Log(LifecycleEvent{Event: "stop_succeeded", Pidfile: pidfilePath, PID: rec.PID, GuardPID: guardPID, Success: true, Message: "terminated by SIGTERM"})
			return Stopped, nil
		}
	} else {
		// Timeout of zero means skip SIGTERM entirely per spec.md §4.4's
		// "if term_timeout == 0, send SIGKILL" rule, applied here to the
		// caller-facing Stop timeout as well as the guardian's internal one.
	}

	if !opts.Force {
		lifecycle.Log(LifecycleEvent{Event: "stop_timed_out", Pidfile: pidfilePath, PID: rec.PID, GuardPID: guardPID, Message: "SIGTERM did not stop the daemon and force was not set"})
		return NotRunning, &guardianerrors.StopTimeoutError{Pidfile: pidfilePath, PID: rec.PID, Timeout: opts.Timeout}
	}

	if err := syscall.Kill(guardPID, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return NotRunning, fmt.Errorf("sending SIGKILL to guardian %d: %w", guardPID, err)
	}
	if waitForRelease(pidfilePath, 5*time.Second) {
		lifecycle.Log(LifecycleEvent{Event: "stop_succeeded", Pidfile: pidfilePath, PID: rec.PID, GuardPID: guardPID, Success: true, Message: "terminated by SIGKILL"})
		return Stopped, nil
	}

	lifecycle.Log(LifecycleEvent{Event: "stop_timed_out", Pidfile: pidfilePath, PID: rec.PID, GuardPID: guardPID, Message: "SIGKILL did not stop the daemon"})
	return NotRunning, &guardianerrors.StopTimeoutError{Pidfile: pidfilePath, PID: rec.PID, Timeout: opts.Timeout}
}

// waitForRelease polls Check() until it reports false (lock released) or
// timeout elapses, returning true in the former case.
func waitForRelease(pidfilePath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !Check(pidfilePath) {
			removeRecord(pidfilePath)
			return true
		}
		time.Sleep(pollInterval)
	}
	return !Check(pidfilePath)
}
