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

// NewStopCommand creates the "stop" command.
func NewStopCommand() *cobra.Command {
	var (
		pidfile    string
		timeoutRaw string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "stop --pidfile PATH",
		Short: "Stop a daemon started with start",
		Long: `Stop sends SIGTERM to the guardian process and waits up to --timeout
for the pidfile's lock to be released. The guardian alone decides whether
its worker ever sees SIGTERM, per its own term_timeout. If --force is set
and the timeout elapses, stop escalates to SIGKILL against the guardian
before giving up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pidfile == "" {
				return shared.NewValidationError("--pidfile is required", nil)
			}
			timeout, err := daemon.ParseTimeoutSeconds("timeout", timeoutRaw)
			if err != nil {
				return exitError("invalid --timeout", err)
			}
			cfg, err := config.Load(shared.GetConfigPath())
			if err != nil {
				return exitError("failed to load config", err)
			}

			status, err := daemon.Stop(pidfile, daemon.StopOptions{Timeout: timeout, Force: force, LifecycleLog: cfg.Log.LifecycleLog})
			if err != nil {
				return exitError("failed to stop daemon", err)
			}

			if shared.GetJSON() {
				return emitStopJSON(pidfile, status)
			}

			switch status {
			case daemon.Stopped:
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("stopped (pidfile %s)", pidfile)))
			case daemon.NotRunning:
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderWarn(fmt.Sprintf("not running (pidfile %s)", pidfile)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pidfile, "pidfile", "", "Path to the pidfile tracking the daemon (required)")
	cmd.Flags().StringVar(&timeoutRaw, "timeout", "10", "Non-negative integer seconds to wait after SIGTERM before giving up or escalating")
	cmd.Flags().BoolVar(&force, "force", false, "Escalate to SIGKILL if the timeout elapses")

	return cmd
}

func emitStopJSON(pidfile string, status daemon.Status) error {
	type stopResponse struct {
		shared.JSONResponse
		Pidfile string `json:"pidfile"`
		Status  string `json:"status"`
	}
	return shared.EmitJSON(stopResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "stop", Success: true},
		Pidfile:      pidfile,
		Status:       status.String(),
	})
}
