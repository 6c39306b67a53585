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

/*
Package cli provides the root command and shared configuration for
guardianctl's CLI.

This package creates the main Cobra command tree and handles global concerns
like version information, persistent flags, and error handling. Individual
commands are implemented in the internal/commands subpackages.

# Command Tree

The CLI is organized as:

	guardianctl
	├── start         Start a daemon from a spec
	├── stop          Stop a running daemon
	├── check         Report whether a daemon is alive
	├── service
	│   ├── list      List daemons declared in the service directory
	│   ├── show      Show one daemon's resolved spec
	│   ├── status    Query the status API for a running daemon
	│   └── serve     Run the status API server
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

All commands inherit these flags:

	--verbose, -v    Enable verbose output
	--quiet, -q      Suppress non-error output
	--json           Output in JSON format
	--config         Path to config file

# Error Handling

Errors are handled centrally so each lifecycle failure exits with a
distinct code:

  - Exit 0: Success
  - Exit 1: Spec validation failed
  - Exit 2: Precondition failed (e.g. unwritable stdout/stderr)
  - Exit 3: Daemon already running
  - Exit 4: Lock contention
  - Exit 5: Stop timed out
  - Exit 6: Daemon not running

Use HandleExitError for consistent error handling:

	if err := cmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}
*/
package cli
