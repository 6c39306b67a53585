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

import "os"

// Check reports whether the daemon tracked by pidfilePath is currently
// alive. It never blocks and is safe to call concurrently with Start or
// Stop against the same pidfile: it probes the advisory lock rather than
// trusting the pidfile's mere existence, so a stale pidfile left behind
// by a killed guardian correctly reports false.
//
// A missing pidfile (and thus a missing lock sidecar) is not an error —
// it simply means the daemon has never been started, or was already
// cleaned up, so Check returns false.
func Check(pidfilePath string) bool {
	if _, err := os.Stat(pidfilePath); err != nil {
		return false
	}
	held, err := probeExclusive(pidfilePath)
	if err != nil {
		return false
	}
	return held
}

// CheckPID returns the worker and guardian process IDs recorded in the
// pidfile, along with whether the daemon is currently alive. It's used by
// the status API and CLI "check -v" output to report more than a boolean.
func CheckPID(pidfilePath string) (pid, guardPID int, alive bool) {
	rec, err := readRecord(pidfilePath)
	if err != nil {
		return 0, 0, false
	}
	return rec.PID, rec.GuardPID, Check(pidfilePath)
}
