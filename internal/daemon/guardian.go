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
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"
)

// RunSupervisor is the guardian's entrypoint. The host binary's main()
// calls this when os.Args[1] == SuperviseArg, passing os.Args[2] (the
// spec file path written by Start) as specPath. It never returns under
// normal operation — it calls os.Exit itself once the worker it
// supervises has ended and cleanup is complete.
func RunSupervisor(specPath string) {
	statusPipe := os.NewFile(3, "guardian-status")
	if statusPipe == nil {
		os.Exit(70) // EX_SOFTWARE: caller didn't give us the expected fd
	}

	sf, err := readSpecFile(specPath)
	if err != nil {
		reportStatus(statusPipe, err.Error())
		os.Exit(1)
	}
	os.Remove(specPath)
	spec := sf.Spec

	lock, err := acquireExclusive(spec.Pidfile)
	if err != nil {
		reportStatus(statusPipe, err.Error())
		os.Exit(1)
	}

	workerCmd, err := buildWorkerCmd(sf)
	if err != nil {
		reportStatus(statusPipe, err.Error())
		os.Exit(1)
	}

	if err := workerCmd.Start(); err != nil {
		reportStatus(statusPipe, fmt.Sprintf("starting worker: %v", err))
		os.Exit(1)
	}

	guardPID := os.Getpid()
	workerPID := workerCmd.Process.Pid

	if err := writeRecord(spec.Pidfile, record{PID: workerPID, GuardPID: guardPID}); err != nil {
		workerCmd.Process.Kill()
		reportStatus(statusPipe, err.Error())
		os.Exit(1)
	}

	// SIGTERM must be trapped before we ever block in Wait, or a signal
	// delivered in the gap between spawning the worker and entering the
	// wait loop would be lost and this guardian (and its worker) would
	// never learn a Stop was requested.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)

	reportStatus(statusPipe, "")
	statusPipe.Close()

	exitCh := make(chan error, 1)
	go func() { exitCh <- workerCmd.Wait() }()

	lifecycle := NewLifecycleLogger(spec.LifecycleLog)

	select {
	case <-sigCh:
		stopWorker(workerCmd, spec.TermTimeout, exitCh)
		lifecycle.Log(LifecycleEvent{Event: "worker_exited", Daemon: spec.Name, Pidfile: spec.Pidfile, PID: workerPID, GuardPID: guardPID, Message: "guardian asked to stop supervising"})
	case <-exitCh:
		lifecycle.Log(LifecycleEvent{Event: "worker_exited", Daemon: spec.Name, Pidfile: spec.Pidfile, PID: workerPID, GuardPID: guardPID, Message: "worker exited on its own"})
	}

	removeRecord(spec.Pidfile)
	// The lock is never unlocked explicitly: the kernel drops it when this
	// process exits. KeepAlive keeps the handle's descriptor open until then.
	runtime.KeepAlive(lock)
	os.Exit(0)
}

// stopWorker implements the guardian's internal shutdown of its own
// worker once the guardian itself has been asked to stop: SIGTERM the
// worker, wait up to termTimeout, then SIGKILL if it's still alive.
// termTimeout == 0 skips SIGTERM and kills immediately.
func stopWorker(cmd *exec.Cmd, termTimeout time.Duration, exitCh chan error) {
	pid := cmd.Process.Pid

	if termTimeout > 0 {
		syscall.Kill(pid, syscall.SIGTERM)
		select {
		case <-exitCh:
			return
		case <-time.After(termTimeout):
		}
	}

	syscall.Kill(pid, syscall.SIGKILL)
	<-exitCh
}

// buildWorkerCmd constructs the not-yet-started worker command for a
// spec, resolving between an external Exec argv and an in-process
// Callback re-exec.
func buildWorkerCmd(sf specFile) (*exec.Cmd, error) {
	spec := sf.Spec

	var cmd *exec.Cmd
	if spec.Callback != "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolving own executable for callback worker: %w", err)
		}
		cmd = exec.Command(self, WorkerCallbackArg, spec.Callback)
	} else if sf.ResolvedBin != "" {
		cmd = exec.Command(sf.ResolvedBin, spec.Exec[1:]...)
	} else {
		// exec.LookPath failed in Start; give the worker a real,
		// observable process with the shell's own "not found" exit
		// status instead of failing before a pidfile ever exists.
		cmd = exec.Command("/bin/sh", "-c", "exit 127")
	}

	cmd.Dir = resolveWorkingDir(spec)
	cmd.Env = append(os.Environ(), spec.Environment...)
	// Setpgid gives the worker its own process group, separate from the
	// guardian's. Stop signals only guard_pid, never the worker directly —
	// the guardian alone decides whether its worker ever sees SIGTERM
	// (term_timeout mediates that), and this is what keeps a caller's
	// signal from reaching the worker before the guardian gets a say.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if spec.User != "" || spec.Group != "" {
		cred, err := lookupCredential(spec.User, spec.Group)
		if err != nil {
			return nil, err
		}
		cmd.SysProcAttr.Credential = cred
	}

	stdout, err := openRedirect(spec.Stdout)
	if err != nil {
		return nil, err
	}
	stderr, err := openRedirect(spec.Stderr)
	if err != nil {
		return nil, err
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd, nil
}

func openRedirect(path string) (*os.File, error) {
	if path == "" {
		return os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}

// lookupCredential resolves a user/group name into the uid/gid pair
// exec.Cmd.SysProcAttr.Credential needs to drop privileges between the
// worker's fork and its exec — the Go-idiomatic equivalent of a classic
// daemon's setgid()/setuid() calls after forking.
func lookupCredential(user, group string) (*syscall.Credential, error) {
	cred := &syscall.Credential{}
	if user != "" {
		uid, err := parseNumericOrLookupUID(user)
		if err != nil {
			return nil, err
		}
		cred.Uid = uid
	}
	if group != "" {
		gid, err := parseNumericOrLookupGID(group)
		if err != nil {
			return nil, err
		}
		cred.Gid = gid
	}
	return cred, nil
}

func parseNumericOrLookupUID(user string) (uint32, error) {
	if n, err := strconv.ParseUint(user, 10, 32); err == nil {
		return uint32(n), nil
	}
	return 0, fmt.Errorf("resolving user %q: user lookup by name requires cgo and is not supported; pass a numeric uid", user)
}

func parseNumericOrLookupGID(group string) (uint32, error) {
	if n, err := strconv.ParseUint(group, 10, 32); err == nil {
		return uint32(n), nil
	}
	return 0, fmt.Errorf("resolving group %q: group lookup by name requires cgo and is not supported; pass a numeric gid", group)
}

// reportStatus writes a single status line and lets the caller (Start)
// know the outcome, in the format waitForStatus expects.
func reportStatus(pipe *os.File, errMsg string) {
	if errMsg == "" {
		fmt.Fprint(pipe, "ok\n")
		return
	}
	fmt.Fprintf(pipe, "%s%s\n", statusErr, errMsg)
}
