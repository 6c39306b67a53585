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

// Command guardianctl is both the CLI a user types and the binary that
// re-execs itself into a guardian or worker-callback process. main()
// checks for the hidden re-exec subcommands before handing control to
// cobra, since neither of those code paths ever wants argument parsing,
// help text, or exit-code translation.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/tombarlow/guardian/internal/cli"
	"github.com/tombarlow/guardian/internal/commands/completion"
	"github.com/tombarlow/guardian/internal/commands/daemonctl"
	versioncmd "github.com/tombarlow/guardian/internal/commands/version"
	"github.com/tombarlow/guardian/internal/daemon"
	"github.com/tombarlow/guardian/internal/log"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) >= 3 {
		switch os.Args[1] {
		case daemon.SuperviseArg:
			daemon.RunSupervisor(os.Args[2])
			return
		case daemon.WorkerCallbackArg:
			daemon.RunWorkerCallback(os.Args[2])
			return
		}
	}

	logger := log.New(log.FromEnv())
	slog.SetDefault(logger)

	cli.SetVersion(version, commit, buildDate)
	rootCmd := cli.NewRootCommand()

	rootCmd.AddCommand(daemonctl.NewStartCommand())
	rootCmd.AddCommand(daemonctl.NewStopCommand())
	rootCmd.AddCommand(daemonctl.NewCheckCommand())
	rootCmd.AddCommand(daemonctl.NewServiceCommand())
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		cli.HandleExitError(err)
	}
}
