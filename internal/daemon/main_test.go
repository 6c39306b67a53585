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
	"os"
	"testing"
)

// TestMain lets the compiled test binary stand in for the guardianctl
// binary Start() re-execs via os.Executable(): when invoked with the
// hidden re-exec subcommands as its first argument, it dispatches exactly
// as cmd/guardianctl's main() does instead of running the test suite.
// This is the same "helper process" pattern os/exec's own tests use to
// exercise real child processes without a separate compiled fixture.
func TestMain(m *testing.M) {
	if len(os.Args) >= 3 {
		switch os.Args[1] {
		case SuperviseArg:
			RunSupervisor(os.Args[2])
			return
		case WorkerCallbackArg:
			RunWorkerCallback(os.Args[2])
			return
		}
	}
	os.Exit(m.Run())
}
