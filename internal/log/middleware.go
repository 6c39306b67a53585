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

package log

import (
	"log/slog"
	"net/http"
	"time"
)

// APIRequest represents an inbound status-API request for logging purposes.
type APIRequest struct {
	// Method is the HTTP method (GET, POST, ...).
	Method string

	// Path is the request URL path.
	Path string

	// RemoteAddr is the address of the calling client.
	RemoteAddr string
}

// APIResponse represents the outcome of a status-API request.
type APIResponse struct {
	// StatusCode is the HTTP status code written to the client.
	StatusCode int

	// DurationMs is how long the handler took to run.
	DurationMs int64
}

// LogAPIRequest logs an incoming status-API request.
func LogAPIRequest(logger *slog.Logger, req *APIRequest) {
	logger.Info("status api request received",
		"event", "api_request",
		"method", req.Method,
		"path", req.Path,
		"remote", req.RemoteAddr,
	)
}

// LogAPIResponse logs a status-API response.
func LogAPIResponse(logger *slog.Logger, req *APIRequest, resp *APIResponse) {
	level := slog.LevelInfo
	msg := "status api request completed"
	if resp.StatusCode >= 500 {
		level = slog.LevelError
		msg = "status api request failed"
	}

	logger.Log(nil, level, msg,
		"event", "api_response",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", resp.DurationMs,
		"remote", req.RemoteAddr,
	)
}

// RequestLogger wraps http.Handler with request/response logging.
// It is mounted once around the status API's ServeMux so every /v1/daemons,
// /metrics and /healthz call is recorded consistently.
type RequestLogger struct {
	logger *slog.Logger
	next   http.Handler
}

// NewRequestLogger creates an HTTP middleware that logs through logger and
// delegates to next.
func NewRequestLogger(logger *slog.Logger, next http.Handler) *RequestLogger {
	return &RequestLogger{logger: logger, next: next}
}

// statusRecorder captures the status code written by the wrapped handler,
// since http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ServeHTTP implements http.Handler.
func (m *RequestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := &APIRequest{Method: r.Method, Path: r.URL.Path, RemoteAddr: r.RemoteAddr}
	LogAPIRequest(m.logger, req)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	m.next.ServeHTTP(rec, r)

	LogAPIResponse(m.logger, req, &APIResponse{
		StatusCode: rec.status,
		DurationMs: time.Since(start).Milliseconds(),
	})
}
