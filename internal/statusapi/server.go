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

package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tombarlow/guardian/internal/daemon"
	guardianlog "github.com/tombarlow/guardian/internal/log"
	"github.com/tombarlow/guardian/internal/servicedir"
)

// Server serves guardian's status API: liveness, per-daemon status, and
// Prometheus metrics.
type Server struct {
	httpServer  *http.Server
	serviceDir  string
	metricsPath string
	logger      *slog.Logger
}

// Config configures a Server.
type Config struct {
	Listen      string
	ServiceDir  string
	MetricsPath string
	Logger      *slog.Logger
}

// New builds a Server. It does not start listening until Serve is called.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	s := &Server{serviceDir: cfg.ServiceDir, metricsPath: metricsPath, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/v1/daemons", s.handleDaemons)
	mux.Handle(metricsPath, promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:    cfg.Listen,
		Handler: guardianlog.NewRequestLogger(logger, mux),
	}

	return s
}

// Serve blocks accepting connections until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// daemonStatus is one entry in the /v1/daemons response.
type daemonStatus struct {
	Name     string `json:"name"`
	Pidfile  string `json:"pidfile"`
	PID      int    `json:"pid,omitempty"`
	GuardPID int    `json:"guard_pid,omitempty"`
	Alive    bool   `json:"alive"`
}

func (s *Server) handleDaemons(w http.ResponseWriter, r *http.Request) {
	records, err := servicedir.List(s.serviceDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	statuses := make([]daemonStatus, 0, len(records))
	for _, rec := range records {
		pid, guardPID, alive := daemon.CheckPID(rec.Pidfile)
		RecordAlive(rec.Name, alive)
		statuses = append(statuses, daemonStatus{
			Name:     rec.Name,
			Pidfile:  rec.Pidfile,
			PID:      pid,
			GuardPID: guardPID,
			Alive:    alive,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Daemons []daemonStatus `json:"daemons"`
	}{Daemons: statuses})
}
