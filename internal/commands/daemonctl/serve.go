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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tombarlow/guardian/internal/commands/shared"
	"github.com/tombarlow/guardian/internal/config"
	"github.com/tombarlow/guardian/internal/statusapi"
)

func newServiceServeCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the status API, reporting on daemons in the service directory",
		Long: `Serve blocks, exposing /healthz, /v1/daemons, and /metrics over HTTP for
every daemon declared in the service directory, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(shared.GetConfigPath())
			if err != nil {
				return exitError("failed to load config", err)
			}
			if listen != "" {
				cfg.StatusAPI.Listen = listen
			}

			srv := statusapi.New(statusapi.Config{
				Listen:      cfg.StatusAPI.Listen,
				ServiceDir:  cfg.ServiceDir,
				MetricsPath: cfg.StatusAPI.MetricsPath,
				Logger:      slog.Default(),
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("listening on %s", cfg.StatusAPI.Listen)))
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Override the configured status_api.listen address")
	return cmd
}
