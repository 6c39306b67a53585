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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// specFile is the on-disk shape Start() hands to the re-exec'd guardian.
// It carries the full Spec plus the caller's PATH-resolved worker argv,
// so the guardian never has to repeat path lookup or validation.
type specFile struct {
	Spec        Spec
	ResolvedBin string // argv[0] resolved via exec.LookPath, or "" for Callback specs
}

// Start implements the daemon start protocol: validate the spec, confirm
// its stdout/stderr targets are writable, refuse to proceed if the
// pidfile already names a live daemon, reap a stale pidfile left by a
// guardian that died without cleaning up, then launch a guardian process
// that itself launches the worker.
//
// Go cannot fork(2) a running multi-goroutine process, so the "double
// fork" spec.md describes is built from two os/exec calls instead of two
// real forks: Start here execs a copy of the current binary into the
// guardian (this is the first "fork+exec"), and the guardian in turn
// execs (or re-execs, for callbacks) the worker (the second). Start
// itself never becomes a daemon — it blocks only long enough to learn
// whether the guardian reached a stable, locked, pidfile-published state,
// then returns, exactly as spec.md's parent process does after its first
// fork returns.
func Start(ctx context.Context, spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := checkWritable(spec.Stdout); err != nil {
		return err
	}
	if err := checkWritable(spec.Stderr); err != nil {
		return err
	}

	lifecycle := NewLifecycleLogger(spec.LifecycleLog)
	lifecycle.Log(LifecycleEvent{
		Event:   "start_requested",
		Daemon:  spec.Name,
		Pidfile: spec.Pidfile,
	})

	if err := reapOrPreflight(spec.Pidfile, lifecycle, spec); err != nil {
		lifecycle.Log(LifecycleEvent{Event: "start_failed", Daemon: spec.Name, Pidfile: spec.Pidfile, Error: err.Error()})
		return err
	}

	resolvedBin := ""
	if len(spec.Exec) > 0 {
		bin, err := exec.LookPath(spec.Exec[0])
		if err != nil {
			// A worker that can't be found still becomes a real process
			// with a distinguishable exit status (127), rather than
			// Start failing before a pidfile/lock ever exists. This
			// matches a shell's own "command not found" convention and
			// keeps the guardian's lifecycle uniform regardless of why
			// the worker exited.
			resolvedBin = ""
		} else {
			resolvedBin = bin
		}
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own executable path: %w", err)
	}

	specPath, err := writeSpecFile(specFile{Spec: spec, ResolvedBin: resolvedBin})
	if err != nil {
		return err
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("creating status pipe: %w", err)
	}
	defer pr.Close()

	cmd := exec.Command(self, SuperviseArg, specPath)
	cmd.ExtraFiles = []*os.File{pw}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		pw.Close()
		os.Remove(specPath)
		return fmt.Errorf("spawning guardian: %w", err)
	}
	pw.Close() // parent's copy; the guardian keeps its own

	status, statusErrVal := waitForStatus(ctx, pr)

	// The guardian is now independent of this process; release it so we
	// don't accidentally reap it as our own child.
	_ = cmd.Process.Release()

	if statusErrVal != nil {
		lifecycle.Log(LifecycleEvent{Event: "start_failed", Daemon: spec.Name, Pidfile: spec.Pidfile, Error: statusErrVal.Error()})
		return statusErrVal
	}
	if status != "" {
		lifecycle.Log(LifecycleEvent{Event: "start_failed", Daemon: spec.Name, Pidfile: spec.Pidfile, Error: status})
		return errors.New(status)
	}
	lifecycle.Log(LifecycleEvent{Event: "start_succeeded", Daemon: spec.Name, Pidfile: spec.Pidfile, Success: true})
	return nil
}

// reapOrPreflight checks whether pidfilePath already names a live
// daemon. If it does, Start must refuse with AlreadyRunningError. If the
// pidfile exists but nothing holds its lock, the previous guardian died
// without cleanup (e.g. it was SIGKILLed) — that pidfile is stale. Any
// worker the dead guardian was supervising survives it (the worker is the
// guardian's child, not its dependent, and runs in its own process
// group), so it is now orphaned and must be reaped here before the stale
// pidfile is removed and Start proceeds — otherwise the next Start would
// spawn a second worker alongside the leaked first one.
func reapOrPreflight(pidfilePath string, lifecycle *LifecycleLogger, spec Spec) error {
	if _, err := os.Stat(pidfilePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("statting pidfile %s: %w", pidfilePath, err)
	}

	held, err := probeExclusive(pidfilePath)
	if err != nil {
		return fmt.Errorf("probing pidfile lock: %w", err)
	}
	if held {
		rec, _ := readRecord(pidfilePath)
		lifecycle.Log(LifecycleEvent{Event: "already_running", Daemon: spec.Name, Pidfile: pidfilePath, PID: rec.PID})
		return &guardianerrors.AlreadyRunningError{Pidfile: pidfilePath, PID: rec.PID}
	}

	rec, _ := readRecord(pidfilePath)
	if rec.PID != 0 && processAlive(rec.PID) {
		reapOrphanWorker(rec.PID)
	}
	lifecycle.Log(LifecycleEvent{Event: "orphan_reaped", Daemon: spec.Name, Pidfile: pidfilePath, PID: rec.PID, GuardPID: rec.GuardPID})
	return removeRecord(pidfilePath)
}

// reapOrphanWorker SIGKILLs a worker left running by a guardian that died
// without cleaning up, then blocks until it's actually gone. The worker
// is signaled by its own process group (buildWorkerCmd gives it one
// separate from the guardian's), reaching any of its own descendants too.
func reapOrphanWorker(pid int) {
	syscall.Kill(-pid, syscall.SIGKILL)
	deadline := time.Now().Add(5 * time.Second)
	for processAlive(pid) && time.Now().Before(deadline) {
		time.Sleep(pollInterval)
	}
}

// processAlive reports whether pid names a live process, using the
// signal-0 idiom (send no actual signal, just check for ESRCH).
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

// waitForStatus reads the guardian's single status line from the pipe.
// It returns ("", nil) on "ok" and (msg, nil) when the guardian reported a
// failure (msg is the text after the "err " prefix, or the whole line if
// it has none); Start turns a non-empty msg into an error. A read failure,
// ctx cancellation or the 30s deadline is returned as an error.
func waitForStatus(ctx context.Context, pr *os.File) (string, error) {
	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		sc := bufio.NewScanner(pr)
		if sc.Scan() {
			done <- result{line: sc.Text()}
			return
		}
		done <- result{err: sc.Err()}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("reading guardian status: %w", r.err)
		}
		if r.line == "ok" {
			return "", nil
		}
		if len(r.line) > len(statusErr) && r.line[:len(statusErr)] == statusErr {
			return r.line[len(statusErr):], nil
		}
		return r.line, nil
	case <-ctx.Done():
		return "", &guardianerrors.TimeoutError{Operation: "guardian readiness", Duration: 0, Cause: ctx.Err()}
	case <-time.After(30 * time.Second):
		return "", &guardianerrors.TimeoutError{Operation: "guardian readiness", Duration: 30 * time.Second}
	}
}

func writeSpecFile(sf specFile) (string, error) {
	data, err := json.Marshal(sf)
	if err != nil {
		return "", fmt.Errorf("encoding daemon spec: %w", err)
	}
	f, err := os.CreateTemp("", "guardian-spec-*.json")
	if err != nil {
		return "", fmt.Errorf("creating spec file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing spec file: %w", err)
	}
	return f.Name(), nil
}

func readSpecFile(path string) (specFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return specFile{}, fmt.Errorf("reading spec file %s: %w", path, err)
	}
	var sf specFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return specFile{}, fmt.Errorf("decoding spec file %s: %w", path, err)
	}
	return sf, nil
}

// resolveWorkingDir returns spec.WorkingDir if set, else the caller's cwd.
func resolveWorkingDir(spec Spec) string {
	if spec.WorkingDir != "" {
		return spec.WorkingDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Dir(spec.Pidfile)
	}
	return wd
}
