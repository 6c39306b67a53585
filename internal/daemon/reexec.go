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

// Hidden re-exec subcommands. The host binary's main() must check for
// these as the first argument before handing control to cobra — see
// cmd/guardianctl/main.go. They are never documented in --help output;
// a user never types them directly.
const (
	// SuperviseArg is the hidden subcommand a Start() call re-execs
	// itself into to become the guardian for one Spec.
	SuperviseArg = "__guardian-supervise"

	// WorkerCallbackArg is the hidden subcommand a guardian re-execs
	// itself into when a Spec names a Callback instead of an Exec argv.
	WorkerCallbackArg = "__guardian-worker-callback"
)

// statusOK and statusErr are the two lines a guardian ever writes to its
// status pipe before closing it. The CLI-facing Start() call blocks
// reading this pipe to know whether to report success or a specific
// failure back to its own caller.
const (
	statusOK  = "ok\n"
	statusErr = "err "
)
