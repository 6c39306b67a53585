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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAlive(t *testing.T) {
	RecordAlive("metrics-test-alive", true)
	got := testutil.ToFloat64(daemonAlive.WithLabelValues("metrics-test-alive"))
	if got != 1.0 {
		t.Errorf("daemonAlive = %v, want 1", got)
	}

	RecordAlive("metrics-test-alive", false)
	got = testutil.ToFloat64(daemonAlive.WithLabelValues("metrics-test-alive"))
	if got != 0.0 {
		t.Errorf("daemonAlive = %v, want 0", got)
	}
}

func TestRecordTransition(t *testing.T) {
	RecordTransition("metrics-test-transition", "start_requested", "ok")
	RecordTransition("metrics-test-transition", "start_requested", "ok")
	got := testutil.ToFloat64(lifecycleTransitions.WithLabelValues("metrics-test-transition", "start_requested", "ok"))
	if got != 2.0 {
		t.Errorf("lifecycleTransitions = %v, want 2", got)
	}
}

func TestObserveCheckDuration(t *testing.T) {
	ObserveCheckDuration("metrics-test-duration", 0.05)
	if count := testutil.CollectAndCount(checkDuration); count == 0 {
		t.Error("checkDuration has no observations after ObserveCheckDuration")
	}
}
