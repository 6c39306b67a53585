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

// Package daemon implements the three core mechanisms of a daemon
// supervisor: starting a guardian+worker process pair behind an atomic
// pidfile and exclusive advisory lock (Start), probing that lock to answer
// "is this daemon alive right now" without disturbing it (Check), and
// escalating from SIGTERM to SIGKILL under a timeout to bring the pair
// down (Stop).
//
// Every supervised daemon is exactly two OS processes: the guardian, which
// holds the pidfile's lock for as long as the daemon is considered running,
// and the worker, which is either an exec'd command line or a compiled-in
// callback run in a re-exec'd copy of the current binary. Guardian never
// forks its own live runtime — see start.go for why, and how the "double
// fork" is instead built from os/exec and a self re-exec chain.
package daemon

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// Spec describes a single daemon to be supervised. Exactly one of Exec or
// Callback must be set.
type Spec struct {
	// Name identifies the daemon in logs and lifecycle events. Optional.
	Name string

	// Pidfile is the path Guardian uses to track this daemon. Required.
	Pidfile string

	// Exec is the worker's argv. Mutually exclusive with Callback.
	Exec []string

	// Callback is the name of a function registered with RegisterCallback,
	// run in a re-exec'd worker process instead of an external command.
	// Mutually exclusive with Exec.
	Callback string

	// Stdout and Stderr are paths the worker's standard streams are
	// redirected to. Empty means /dev/null.
	Stdout string
	Stderr string

	// WorkingDir is the worker's working directory. Empty means inherit
	// the caller's.
	WorkingDir string

	// Environment holds extra KEY=VALUE pairs appended to the worker's
	// environment (which otherwise inherits the caller's).
	Environment []string

	// User and Group, if set, are dropped into after the worker process
	// is created and before its program is exec'd.
	User  string
	Group string

	// TermTimeout is how long the guardian's own SIGTERM handler will
	// wait for its worker to exit once the guardian itself is asked to
	// stop supervising. Distinct from StopOptions.Timeout, which bounds
	// the Stop() call made by an external caller.
	TermTimeout time.Duration

	// LifecycleLog, if set, is a path Start appends JSON-lines diagnostic
	// events to (start requested, already running, orphan reaped). Empty
	// disables it.
	LifecycleLog string
}

// StopOptions configures a Stop call.
type StopOptions struct {
	// Timeout is how long to wait after SIGTERM before escalating to
	// SIGKILL. Zero means skip SIGTERM: with Force, SIGKILL is sent
	// immediately; without Force, Stop returns a StopTimeoutError without
	// sending any signal.
	Timeout time.Duration

	// Force, when true, allows escalation to SIGKILL. When false, Stop
	// gives up (returning a StopTimeoutError) if SIGTERM alone did not
	// end the process within Timeout.
	Force bool

	// LifecycleLog, if set, is a path Stop appends JSON-lines diagnostic
	// events to (stop requested, stop succeeded, stop timed out). Empty
	// disables it.
	LifecycleLog string
}

// Status is the outcome of a Stop call.
type Status int

const (
	// Stopped means the daemon was running and Stop ended it.
	Stopped Status = iota
	// NotRunning means the daemon was not running when Stop was called.
	NotRunning
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case NotRunning:
		return "not_running"
	default:
		return "unknown"
	}
}

var timeoutFieldRegex = regexp.MustCompile(`^[0-9]+$`)

// validateTimeoutSeconds checks that a raw CLI/config timeout value is a
// non-negative integer literal, matching the compatibility requirement
// that malformed values report "did not pass regex check" for field.
func validateTimeoutSeconds(field, raw string) (int, error) {
	if !timeoutFieldRegex.MatchString(raw) {
		return 0, &guardianerrors.ValidationError{
			Field:      field,
			Message:    "did not pass regex check",
			Suggestion: fmt.Sprintf("%s must be a non-negative integer number of seconds", field),
		}
	}
	var n int
	_, err := fmt.Sscanf(raw, "%d", &n)
	if err != nil {
		return 0, &guardianerrors.ValidationError{Field: field, Message: "did not pass regex check"}
	}
	return n, nil
}

// ParseTimeoutSeconds validates a raw --term-timeout/--timeout flag or
// config value and converts it to a time.Duration. field names the option
// being parsed ("term_timeout" or "timeout") for the resulting error
// message. This is the CLI/config entry point for validateTimeoutSeconds:
// callers must not accept these fields as a typed time.Duration flag
// directly, or a non-integer value is rejected by the flag parser's own
// error instead of the required "did not pass regex check" message.
func ParseTimeoutSeconds(field, raw string) (time.Duration, error) {
	secs, err := validateTimeoutSeconds(field, raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// Validate checks a Spec for internal consistency before Start attempts to
// use it. It does not touch the filesystem beyond what's needed to report
// a clear ValidationError.
func (s Spec) Validate() error {
	if s.Pidfile == "" {
		return &guardianerrors.ValidationError{Field: "pidfile", Message: "must not be empty"}
	}
	hasExec := len(s.Exec) > 0
	hasCallback := s.Callback != ""
	if hasExec == hasCallback {
		return &guardianerrors.ValidationError{
			Field:   "exec/callback",
			Message: "exactly one of exec or callback must be set",
		}
	}
	if hasCallback {
		if _, ok := lookupCallback(s.Callback); !ok {
			return &guardianerrors.ValidationError{
				Field:   "callback",
				Message: fmt.Sprintf("no callback registered under name %q", s.Callback),
			}
		}
	}
	if s.TermTimeout < 0 {
		return &guardianerrors.ValidationError{Field: "term_timeout", Message: "did not pass regex check"}
	}
	return nil
}

var (
	callbackMu       sync.RWMutex
	callbackRegistry = map[string]func() error{}
)

// RegisterCallback makes fn runnable as the worker body of a Spec whose
// Callback field equals name. It must be called before Start (typically
// from an init() in the binary that also calls daemon.Start), because the
// registration has to exist again after the worker process re-execs —
// registering it in the same init() that runs in every invocation of the
// binary satisfies that.
//
// A Go closure cannot survive an exec() boundary, so the worker process
// looks fn back up by name rather than receiving it directly; see
// workercallback.go.
func RegisterCallback(name string, fn func() error) {
	callbackMu.Lock()
	defer callbackMu.Unlock()
	callbackRegistry[name] = fn
}

func lookupCallback(name string) (func() error, bool) {
	callbackMu.RLock()
	defer callbackMu.RUnlock()
	fn, ok := callbackRegistry[name]
	return fn, ok
}
