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

package servicedir

import (
	"os"
	"path/filepath"
	"testing"
)

func writeService(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	content := "name: " + name + "\nexec: [\"/bin/true\"]\npidfile: /tmp/" + name + ".pid\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestList(t *testing.T) {
	t.Run("missing directory yields no error", func(t *testing.T) {
		records, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if records != nil {
			t.Errorf("List() = %v, want nil", records)
		}
	})

	t.Run("lists and sorts by name", func(t *testing.T) {
		dir := t.TempDir()
		writeService(t, dir, "zeta")
		writeService(t, dir, "alpha")

		records, err := List(dir)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("List() returned %d records, want 2", len(records))
		}
		if records[0].Name != "alpha" || records[1].Name != "zeta" {
			t.Errorf("List() order = [%s, %s], want [alpha, zeta]", records[0].Name, records[1].Name)
		}
	})

	t.Run("recurses into subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		writeService(t, filepath.Join(dir, "group"), "nested")

		records, err := List(dir)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 1 || records[0].Name != "nested" {
			t.Errorf("List() = %v, want one record named nested", records)
		}
	})

	t.Run("ignores non-YAML files", func(t *testing.T) {
		dir := t.TempDir()
		writeService(t, dir, "web")
		os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a service"), 0644)

		records, err := List(dir)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 1 {
			t.Errorf("List() returned %d records, want 1 (README.md should be ignored)", len(records))
		}
	})
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	writeService(t, dir, "web")

	t.Run("found", func(t *testing.T) {
		rec, err := Find(dir, "web")
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if rec.Name != "web" {
			t.Errorf("Find() = %+v, want Name=web", rec)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := Find(dir, "missing"); err == nil {
			t.Error("Find() for an unknown name succeeded, want error")
		}
	})
}
