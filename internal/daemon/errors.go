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
	"errors"
	"os"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// checkWritable verifies a worker's configured stdout/stderr path can be
// opened for append-writing, surfacing the exact literal the CLI prints
// for this failure mode. An empty path (meaning /dev/null) is always
// writable.
func checkWritable(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return &guardianerrors.PreconditionError{Check: "writable", Path: path, Cause: err}
	}
	return f.Close()
}

// IsAlreadyRunning reports whether err (or something it wraps) is an
// AlreadyRunningError, so callers such as the CLI's start command can
// report "already running" distinctly (the start command maps it to its
// own exit code).
func IsAlreadyRunning(err error) bool {
	var target *guardianerrors.AlreadyRunningError
	return errors.As(err, &target)
}
