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

package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *guardianerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &guardianerrors.ValidationError{
				Field:      "term_timeout",
				Message:    "did not pass regex check",
				Suggestion: "use an integer number of seconds",
			},
			wantMsg: "validation failed on term_timeout: did not pass regex check",
		},
		{
			name: "without field",
			err: &guardianerrors.ValidationError{
				Message: "invalid format",
			},
			wantMsg: "validation failed: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *guardianerrors.NotFoundError
		wantMsg string
	}{
		{
			name:    "service not found",
			err:     &guardianerrors.NotFoundError{Resource: "service", ID: "web"},
			wantMsg: "service not found: web",
		},
		{
			name:    "pidfile not found",
			err:     &guardianerrors.NotFoundError{Resource: "pidfile", ID: "/var/run/web.pid"},
			wantMsg: "pidfile not found: /var/run/web.pid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("NotFoundError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestPreconditionError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *guardianerrors.PreconditionError
		wantMsg string
	}{
		{
			name:    "unwritable path",
			err:     &guardianerrors.PreconditionError{Check: "stdout writable", Path: "/root/forbidden.log"},
			wantMsg: "Error: Can't write to '/root/forbidden.log'",
		},
		{
			name:    "no path",
			err:     &guardianerrors.PreconditionError{Check: "working dir exists"},
			wantMsg: "precondition failed: working dir exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("PreconditionError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestPreconditionError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := &guardianerrors.PreconditionError{Check: "stdout writable", Path: "/x", Cause: cause}

	if got := err.Unwrap(); got != cause {
		t.Errorf("PreconditionError.Unwrap() = %v, want %v", got, cause)
	}
}

func TestAlreadyRunningError_Error(t *testing.T) {
	err := &guardianerrors.AlreadyRunningError{Pidfile: "/var/run/web.pid", PID: 4242}
	got := err.Error()
	for _, want := range []string{"daemon already started", "4242", "/var/run/web.pid"} {
		if !strings.Contains(got, want) {
			t.Errorf("AlreadyRunningError.Error() = %q, want to contain %q", got, want)
		}
	}
}

func TestLockContentionError_Error(t *testing.T) {
	err := &guardianerrors.LockContentionError{Pidfile: "/var/run/web.pid"}
	got := err.Error()
	if !strings.Contains(got, "/var/run/web.pid") {
		t.Errorf("LockContentionError.Error() = %q, want to contain pidfile path", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *guardianerrors.ConfigError
		wantMsg string
	}{
		{
			name:    "with key",
			err:     &guardianerrors.ConfigError{Key: "exec", Reason: "must not be empty"},
			wantMsg: "config error at exec: must not be empty",
		},
		{
			name:    "without key",
			err:     &guardianerrors.ConfigError{Reason: "file not found"},
			wantMsg: "config error: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ConfigError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("file read error")
	err := &guardianerrors.ConfigError{Key: "config", Reason: "failed to load", Cause: cause}

	if got := err.Unwrap(); got != cause {
		t.Errorf("ConfigError.Unwrap() = %v, want %v", got, cause)
	}
}

func TestTimeoutError_Error(t *testing.T) {
	err := &guardianerrors.TimeoutError{Operation: "guardian readiness", Duration: 5 * time.Second}
	got := err.Error()
	for _, want := range []string{"guardian readiness", "5s"} {
		if !strings.Contains(got, want) {
			t.Errorf("TimeoutError.Error() = %q, want to contain %q", got, want)
		}
	}
}

func TestTimeoutError_Unwrap(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := &guardianerrors.TimeoutError{Operation: "test", Duration: 5 * time.Second, Cause: cause}

	if got := err.Unwrap(); got != cause {
		t.Errorf("TimeoutError.Unwrap() = %v, want %v", got, cause)
	}
}

func TestStopTimeoutError_Error(t *testing.T) {
	err := &guardianerrors.StopTimeoutError{Pidfile: "/var/run/web.pid", PID: 99, Timeout: 10 * time.Second}
	got := err.Error()
	if !strings.Contains(got, "failed to stop daemon") {
		t.Errorf("StopTimeoutError.Error() = %q, want to contain %q", got, "failed to stop daemon")
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Run("ValidationError can be wrapped", func(t *testing.T) {
		original := &guardianerrors.ValidationError{Field: "term_timeout", Message: "did not pass regex check"}
		wrapped := fmt.Errorf("starting daemon: %w", original)

		var target *guardianerrors.ValidationError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find ValidationError in wrapped error")
		}
		if target.Field != "term_timeout" {
			t.Errorf("unwrapped error Field = %q, want %q", target.Field, "term_timeout")
		}
	})

	t.Run("NotFoundError can be wrapped", func(t *testing.T) {
		original := &guardianerrors.NotFoundError{Resource: "service", ID: "web"}
		wrapped := fmt.Errorf("loading service: %w", original)

		var target *guardianerrors.NotFoundError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find NotFoundError in wrapped error")
		}
		if target.Resource != "service" {
			t.Errorf("unwrapped error Resource = %q, want %q", target.Resource, "service")
		}
	})

	t.Run("PreconditionError preserves cause through wrapping", func(t *testing.T) {
		rootCause := errors.New("permission denied")
		preErr := &guardianerrors.PreconditionError{Check: "stdout writable", Path: "/x", Cause: rootCause}
		wrapped := fmt.Errorf("starting daemon: %w", preErr)

		var target *guardianerrors.PreconditionError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find PreconditionError in wrapped error")
		}
		if target.Unwrap() != rootCause {
			t.Error("PreconditionError.Unwrap() should return root cause")
		}
	})

	t.Run("ConfigError preserves cause through wrapping", func(t *testing.T) {
		rootCause := errors.New("file not found")
		configErr := &guardianerrors.ConfigError{Key: "exec", Reason: "missing required field", Cause: rootCause}
		wrapped := fmt.Errorf("loading config: %w", configErr)

		var target *guardianerrors.ConfigError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find ConfigError in wrapped error")
		}
		if target.Unwrap() != rootCause {
			t.Error("ConfigError.Unwrap() should return root cause")
		}
	})

	t.Run("TimeoutError preserves cause through wrapping", func(t *testing.T) {
		rootCause := errors.New("context deadline exceeded")
		timeoutErr := &guardianerrors.TimeoutError{Operation: "test", Duration: 5 * time.Second, Cause: rootCause}
		wrapped := fmt.Errorf("operation timeout: %w", timeoutErr)

		var target *guardianerrors.TimeoutError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find TimeoutError in wrapped error")
		}
		if target.Unwrap() != rootCause {
			t.Error("TimeoutError.Unwrap() should return root cause")
		}
	})
}

func TestErrorsIs(t *testing.T) {
	t.Run("errors.Is works with wrapped ValidationError", func(t *testing.T) {
		original := &guardianerrors.ValidationError{Field: "test"}
		wrapped := fmt.Errorf("wrapper: %w", original)

		if !errors.Is(wrapped, original) {
			t.Error("errors.Is should find original error in chain")
		}
	})

	t.Run("errors.Is works with wrapped NotFoundError", func(t *testing.T) {
		original := &guardianerrors.NotFoundError{Resource: "test", ID: "123"}
		wrapped := fmt.Errorf("wrapper: %w", original)

		if !errors.Is(wrapped, original) {
			t.Error("errors.Is should find original error in chain")
		}
	})
}
