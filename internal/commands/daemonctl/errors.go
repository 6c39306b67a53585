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

// Package daemonctl implements guardianctl's start, stop, and check
// commands directly on top of internal/daemon.
package daemonctl

import (
	"errors"

	"github.com/tombarlow/guardian/internal/commands/shared"
	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// exitError maps a daemon package error to the ExitError whose code
// identifies which lifecycle failure occurred, so guardianctl's process
// exit status is scriptable without parsing stderr text.
func exitError(msg string, err error) *shared.ExitError {
	var (
		validationErr *guardianerrors.ValidationError
		preErr        *guardianerrors.PreconditionError
		runningErr    *guardianerrors.AlreadyRunningError
		lockErr       *guardianerrors.LockContentionError
		stopErr       *guardianerrors.StopTimeoutError
	)

	switch {
	case errors.As(err, &validationErr):
		return shared.NewValidationError(msg, err)
	case errors.As(err, &preErr):
		return shared.NewPreconditionError(msg, err)
	case errors.As(err, &runningErr):
		return shared.NewAlreadyRunningError(msg, err)
	case errors.As(err, &lockErr):
		return shared.NewLockContentionError(msg, err)
	case errors.As(err, &stopErr):
		return shared.NewStopTimeoutError(msg, err)
	default:
		return shared.NewValidationError(msg, err)
	}
}
