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

package daemonctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombarlow/guardian/internal/commands/shared"
	"github.com/tombarlow/guardian/internal/config"
	"github.com/tombarlow/guardian/internal/daemon"
)

// NewStartCommand creates the "start" command.
func NewStartCommand() *cobra.Command {
	var (
		pidfile        string
		name           string
		stdout         string
		stderr         string
		workdir        string
		user           string
		group          string
		env            []string
		termTimeoutRaw string
		callback       string
	)

	cmd := &cobra.Command{
		Use:   "start [flags] -- command [args...]",
		Short: "Start a daemon behind a guardian process",
		Long: `Start launches a guardian process that execs (or re-execs into a
registered callback) the given command as its worker, then blocks until the
guardian reports it holds the pidfile's lock.

If the pidfile already names a live daemon, start refuses with an
"already running" error instead of starting a second copy.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pidfile == "" {
				return shared.NewValidationError("--pidfile is required", nil)
			}
			termTimeout, err := daemon.ParseTimeoutSeconds("term_timeout", termTimeoutRaw)
			if err != nil {
				return exitError("invalid --term-timeout", err)
			}
			cfg, err := config.Load(shared.GetConfigPath())
			if err != nil {
				return exitError("failed to load config", err)
			}
			spec := daemon.Spec{
				Name:         name,
				Pidfile:      pidfile,
				Exec:         args,
				Callback:     callback,
				Stdout:       stdout,
				Stderr:       stderr,
				WorkingDir:   workdir,
				Environment:  env,
				User:         user,
				Group:        group,
				TermTimeout:  termTimeout,
				LifecycleLog: cfg.Log.LifecycleLog,
			}

			if err := daemon.Start(cmd.Context(), spec); err != nil {
				if daemon.IsAlreadyRunning(err) {
					return exitError("daemon already started", err)
				}
				return exitError("failed to start daemon", err)
			}

			if shared.GetJSON() {
				return emitStartJSON(pidfile)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("started (pidfile %s)", pidfile)))
			return nil
		},
	}

	cmd.Flags().StringVar(&pidfile, "pidfile", "", "Path to the pidfile tracking this daemon (required)")
	cmd.Flags().StringVar(&name, "name", "", "Name recorded in logs and lifecycle events")
	cmd.Flags().StringVar(&stdout, "stdout", "", "Path to redirect the worker's stdout to (default /dev/null)")
	cmd.Flags().StringVar(&stderr, "stderr", "", "Path to redirect the worker's stderr to (default /dev/null)")
	cmd.Flags().StringVar(&workdir, "workdir", "", "Worker's working directory (default: caller's cwd)")
	cmd.Flags().StringVar(&user, "user", "", "Numeric uid (or name, non-cgo builds require numeric) to run the worker as")
	cmd.Flags().StringVar(&group, "group", "", "Numeric gid (or name, non-cgo builds require numeric) to run the worker as")
	cmd.Flags().StringArrayVar(&env, "env", nil, "Extra KEY=VALUE pairs appended to the worker's environment")
	cmd.Flags().StringVar(&termTimeoutRaw, "term-timeout", "5", "Non-negative integer seconds the guardian waits after SIGTERM before escalating to SIGKILL")
	cmd.Flags().StringVar(&callback, "callback", "", "Name of a registered callback to run instead of an external command")

	return cmd
}

func emitStartJSON(pidfile string) error {
	type startResponse struct {
		shared.JSONResponse
		Pidfile string `json:"pidfile"`
	}
	return shared.EmitJSON(startResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "start", Success: true},
		Pidfile:      pidfile,
	})
}
