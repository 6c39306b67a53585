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
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombarlow/guardian/internal/commands/shared"
	"github.com/tombarlow/guardian/internal/config"
	"github.com/tombarlow/guardian/internal/daemon"
	"github.com/tombarlow/guardian/internal/servicedir"
)

// NewServiceCommand creates the "service" command group.
func NewServiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Inspect daemons declared in the service directory",
	}
	cmd.AddCommand(newServiceListCommand())
	cmd.AddCommand(newServiceShowCommand())
	cmd.AddCommand(newServiceStatusCommand())
	cmd.AddCommand(newServiceServeCommand())
	return cmd
}

func serviceDirFromFlag(dirFlag string) (string, error) {
	if dirFlag != "" {
		return dirFlag, nil
	}
	cfg, err := config.Load(shared.GetConfigPath())
	if err != nil {
		return "", exitError("failed to load config", err)
	}
	return cfg.ServiceDir, nil
}

func newServiceListCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List daemons declared in the service directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcDir, err := serviceDirFromFlag(dir)
			if err != nil {
				return err
			}
			records, err := servicedir.List(svcDir)
			if err != nil {
				return exitError("failed to list service directory", err)
			}

			if shared.GetJSON() {
				type listResponse struct {
					shared.JSONResponse
					Services []servicedir.Record `json:"services"`
				}
				return shared.EmitJSON(listResponse{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "service list", Success: true},
					Services:     records,
				})
			}

			for _, rec := range records {
				pid, guardPID, alive := daemon.CheckPID(rec.Pidfile)
				status := shared.RenderWarn("stopped")
				if alive {
					status = shared.RenderOK(fmt.Sprintf("running (pid %d, guard_pid %d)", pid, guardPID))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", rec.Name, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Service directory (default: config's service_dir)")
	return cmd
}

func newServiceShowCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one daemon's resolved spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcDir, err := serviceDirFromFlag(dir)
			if err != nil {
				return err
			}
			rec, err := servicedir.Find(svcDir, args[0])
			if err != nil {
				return exitError("service not found", err)
			}

			if shared.GetJSON() {
				type showResponse struct {
					shared.JSONResponse
					Service servicedir.Record `json:"service"`
				}
				return shared.EmitJSON(showResponse{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "service show", Success: true},
					Service:      rec,
				})
			}

			data, err := yaml.Marshal(rec)
			if err != nil {
				return exitError("failed to render service spec", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Service directory (default: config's service_dir)")
	return cmd
}

func newServiceStatusCommand() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running guardian's status API",
		Long:  `Status fetches /v1/daemons from a guardian process running the optional status API and prints the JSON response.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			resp, err := client.Get(url + "/v1/daemons")
			if err != nil {
				return exitError("failed to reach status API", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return exitError("status API returned an error", fmt.Errorf("status %d", resp.StatusCode))
			}

			buf, err := io.ReadAll(resp.Body)
			if err != nil {
				return exitError("failed to read status API response", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(buf))
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:9090", "Base URL of the guardian status API")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "HTTP request timeout")
	return cmd
}
