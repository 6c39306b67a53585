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

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LifecycleEvent is one append-only JSON line describing a Start/Stop/Check
// driven state transition. Losing this file never changes behavior — it
// exists for post-hoc diagnostics, not control flow.
type LifecycleEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"` // "start_requested", "already_running", "orphan_reaped", "stop_requested", "stop_succeeded", "stop_timed_out", ...
	Daemon    string    `json:"daemon,omitempty"`
	Pidfile   string    `json:"pidfile"`
	PID       int       `json:"pid,omitempty"`
	GuardPID  int       `json:"guard_pid,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// LifecycleLogger appends LifecycleEvents to a JSON-lines file. A zero
// value with an empty path is a valid no-op logger, so callers that never
// configured a lifecycle log file don't need to nil-check.
type LifecycleLogger struct {
	path string
}

// NewLifecycleLogger creates a logger appending to path. An empty path
// disables logging.
func NewLifecycleLogger(path string) *LifecycleLogger {
	return &LifecycleLogger{path: path}
}

// Log appends ev to the lifecycle log, assigning it a fresh ID and
// timestamp. Failures are swallowed — diagnostics logging must never be
// allowed to fail a Start/Stop/Check call.
func (l *LifecycleLogger) Log(ev LifecycleEvent) {
	if l == nil || l.path == "" {
		return
	}
	ev.ID = uuid.NewString()
	ev.Timestamp = time.Now()

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f.Write(data)
}
