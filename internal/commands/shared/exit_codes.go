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

package shared

import (
	"errors"
	"fmt"
	"os"

	pkgerrors "github.com/tombarlow/guardian/pkg/errors"
)

// Exit codes for guardianctl's start/stop/check commands.
const (
	ExitSuccess          = 0
	ExitValidationFailed = 1
	ExitPrecondition     = 2
	ExitAlreadyRunning   = 3
	ExitLockContention   = 4
	ExitStopTimeout      = 5
	ExitNotRunning       = 6
)

// ExitError is an error that carries an exit code.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates an error for a rejected daemon spec field.
func NewValidationError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitValidationFailed, Message: msg, Cause: cause}
}

// NewPreconditionError creates an error for a failed precondition check
// (e.g. an unwritable stdout/stderr target).
func NewPreconditionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitPrecondition, Message: msg, Cause: cause}
}

// NewAlreadyRunningError creates an error for a Start against a daemon
// that is already alive.
func NewAlreadyRunningError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitAlreadyRunning, Message: msg, Cause: cause}
}

// NewLockContentionError creates an error for a concurrent operation
// racing against the same pidfile.
func NewLockContentionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitLockContention, Message: msg, Cause: cause}
}

// NewStopTimeoutError creates an error for a Stop call whose grace period
// was exhausted.
func NewStopTimeoutError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitStopTimeout, Message: msg, Cause: cause}
}

// HandleExitError checks if an error is an ExitError and exits with the
// appropriate code.
func HandleExitError(err error) {
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		msg := exitErr.Error()
		if len(msg) > 0 {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		printUserVisibleSuggestion(err)
		os.Exit(exitErr.Code)
	}

	fmt.Fprintln(os.Stderr, "Error:", err.Error())
	printUserVisibleSuggestion(err)
	os.Exit(ExitValidationFailed)
}

// printUserVisibleSuggestion checks if an error implements UserVisibleError
// and prints the suggestion if available.
func printUserVisibleSuggestion(err error) {
	for err != nil {
		if userErr, ok := err.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				if suggestion := userErr.Suggestion(); suggestion != "" {
					fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}
		err = errors.Unwrap(err)
	}
}
