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
	"github.com/tombarlow/guardian/internal/daemon"
)

// NewCheckCommand creates the "check" command.
func NewCheckCommand() *cobra.Command {
	var pidfile string

	cmd := &cobra.Command{
		Use:   "check --pidfile PATH",
		Short: "Report whether a daemon is currently alive",
		Long: `Check probes the pidfile's advisory lock rather than trusting the
pidfile's mere existence, so a stale pidfile left by a killed guardian
correctly reports the daemon as not running. Exit status 0 means alive,
6 means not running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pidfile == "" {
				return shared.NewValidationError("--pidfile is required", nil)
			}

			pid, guardPID, alive := daemon.CheckPID(pidfile)

			if shared.GetJSON() {
				return emitCheckJSON(pidfile, pid, guardPID, alive)
			}

			if alive {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("alive (pid %d, guard_pid %d)", pid, guardPID)))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderWarn(fmt.Sprintf("not running (pidfile %s)", pidfile)))
			return &shared.ExitError{Code: shared.ExitNotRunning, Message: "daemon not running"}
		},
	}

	cmd.Flags().StringVar(&pidfile, "pidfile", "", "Path to the pidfile tracking the daemon (required)")

	return cmd
}

func emitCheckJSON(pidfile string, pid, guardPID int, alive bool) error {
	type checkResponse struct {
		shared.JSONResponse
		Pidfile  string `json:"pidfile"`
		PID      int    `json:"pid,omitempty"`
		GuardPID int    `json:"guard_pid,omitempty"`
		Alive    bool   `json:"alive"`
	}
	return shared.EmitJSON(checkResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "check", Success: true},
		Pidfile:      pidfile,
		PID:          pid,
		GuardPID:     guardPID,
		Alive:        alive,
	})
}
