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
	"errors"
	"path/filepath"
	"testing"

	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

func TestAcquireExclusive_ContentionReturnsLockContentionError(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "svc.pid")

	first, err := acquireExclusive(pidfile)
	if err != nil {
		t.Fatalf("first acquireExclusive() error = %v", err)
	}
	defer first.release()

	_, err = acquireExclusive(pidfile)
	var target *guardianerrors.LockContentionError
	if err == nil {
		t.Fatal("expected LockContentionError on second acquisition, got nil")
	}
	if !errors.As(err, &target) {
		t.Errorf("second acquireExclusive() error = %v, want *LockContentionError", err)
	}
}

func TestAcquireExclusive_ReleaseThenReacquire(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "svc.pid")

	h, err := acquireExclusive(pidfile)
	if err != nil {
		t.Fatalf("acquireExclusive() error = %v", err)
	}
	if err := h.release(); err != nil {
		t.Fatalf("release() error = %v", err)
	}

	h2, err := acquireExclusive(pidfile)
	if err != nil {
		t.Fatalf("re-acquireExclusive() error = %v", err)
	}
	h2.release()
}

func TestProbeExclusive(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "svc.pid")

	t.Run("nobody holding", func(t *testing.T) {
		held, err := probeExclusive(pidfile)
		if err != nil {
			t.Fatalf("probeExclusive() error = %v", err)
		}
		if held {
			t.Error("probeExclusive() = true, want false when nothing holds the lock")
		}
	})

	t.Run("probe does not itself hold the lock", func(t *testing.T) {
		// A probe must release immediately, so acquiring right after a
		// probe must succeed.
		h, err := acquireExclusive(pidfile)
		if err != nil {
			t.Fatalf("acquireExclusive() after probe error = %v", err)
		}
		h.release()
	})

	t.Run("held by another holder", func(t *testing.T) {
		h, err := acquireExclusive(pidfile)
		if err != nil {
			t.Fatal(err)
		}
		defer h.release()

		held, err := probeExclusive(pidfile)
		if err != nil {
			t.Fatalf("probeExclusive() error = %v", err)
		}
		if !held {
			t.Error("probeExclusive() = false, want true while lock is held")
		}
	})
}

func TestLockHandle_ReleaseNilIsSafe(t *testing.T) {
	var h *lockHandle
	if err := h.release(); err != nil {
		t.Errorf("release() on nil handle error = %v, want nil", err)
	}
}
