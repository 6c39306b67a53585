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

// Error codes for structured JSON output.
const (
	// Spec validation errors (E001-E099)
	ErrorCodeMissingField    = "E001" // Missing required spec field
	ErrorCodeInvalidYAML     = "E002" // Invalid service-directory YAML syntax
	ErrorCodeRegexMismatch   = "E003" // Field failed its regex check (e.g. term_timeout)
	ErrorCodeInvalidExecMode = "E004" // exec and callback both set, or neither

	// Precondition errors (E100-E199)
	ErrorCodeUnwritableTarget = "E101" // stdout/stderr target not writable
	ErrorCodeUnsafeDirectory  = "E102" // pidfile directory fails safety checks

	// Lifecycle errors (E200-E299)
	ErrorCodeAlreadyRunning = "E201" // Start against a live pidfile
	ErrorCodeLockContention = "E202" // concurrent operation racing the pidfile lock
	ErrorCodeStopTimeout    = "E203" // Stop's grace period expired
	ErrorCodeNotRunning     = "E204" // Stop/Check against a daemon that isn't alive

	// Configuration errors (E300-E399)
	ErrorCodeConfigNotFound = "E301" // config file not found
	ErrorCodeInvalidConfig  = "E302" // invalid configuration value

	// Resource errors (E400-E499)
	ErrorCodeNotFound = "E401" // resource not found
	ErrorCodeInternal = "E402" // internal error
)

// mapExitErrorToCode maps ExitError codes to JSON error codes.
func mapExitErrorToCode(exitErr *ExitError) string {
	if exitErr == nil {
		return ""
	}

	switch exitErr.Code {
	case ExitValidationFailed:
		return ErrorCodeRegexMismatch
	case ExitPrecondition:
		return ErrorCodeUnwritableTarget
	case ExitAlreadyRunning:
		return ErrorCodeAlreadyRunning
	case ExitLockContention:
		return ErrorCodeLockContention
	case ExitStopTimeout:
		return ErrorCodeStopTimeout
	case ExitNotRunning:
		return ErrorCodeNotRunning
	default:
		return ErrorCodeInternal
	}
}
