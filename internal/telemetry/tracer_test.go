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

package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestInit_Disabled(t *testing.T) {
	p := Init(Config{Enabled: false, ServiceName: "guardian-test"})
	ctx, span := p.StartLifecycleSpan(context.Background(), "start", "web", "/tmp/web.pid")
	if ctx == nil {
		t.Fatal("StartLifecycleSpan() returned a nil context")
	}
	EndWithError(span, nil)

	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on a disabled provider error = %v, want nil", err)
	}
}

func TestInit_Enabled(t *testing.T) {
	p := Init(Config{Enabled: true, ServiceName: "guardian-test"})
	_, span := p.StartLifecycleSpan(context.Background(), "stop", "web", "/tmp/web.pid")
	EndWithError(span, errors.New("boom"))

	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestEndWithError_NoError(t *testing.T) {
	p := Init(Config{Enabled: true, ServiceName: "guardian-test"})
	_, span := p.StartLifecycleSpan(context.Background(), "check", "web", "/tmp/web.pid")
	// Must not panic when err is nil.
	EndWithError(span, nil)
}
