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

// Package servicedir loads daemon specs declared as YAML files under a
// service directory, and can watch that directory for changes so a
// long-running supervisor process picks up additions, edits, and removals
// without a restart.
package servicedir

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombarlow/guardian/internal/daemon"
	guardianerrors "github.com/tombarlow/guardian/pkg/errors"
)

// Record is the YAML shape of one service file under a service directory.
// It mirrors daemon.Spec's fields, with the term timeout given in whole
// seconds.
type Record struct {
	Name        string   `yaml:"name"`
	Pidfile     string   `yaml:"pidfile"`
	Exec        []string `yaml:"exec"`
	Callback    string   `yaml:"callback"`
	Stdout      string   `yaml:"stdout"`
	Stderr      string   `yaml:"stderr"`
	WorkingDir  string   `yaml:"working_dir"`
	Environment []string `yaml:"environment"`
	User        string   `yaml:"user"`
	Group       string   `yaml:"group"`
	TermTimeout int      `yaml:"term_timeout_seconds"`
}

// ToSpec converts a Record loaded from disk into a daemon.Spec.
func (r Record) ToSpec() daemon.Spec {
	return daemon.Spec{
		Name:        r.Name,
		Pidfile:     r.Pidfile,
		Exec:        r.Exec,
		Callback:    r.Callback,
		Stdout:      r.Stdout,
		Stderr:      r.Stderr,
		WorkingDir:  r.WorkingDir,
		Environment: r.Environment,
		User:        r.User,
		Group:       r.Group,
		TermTimeout: time.Duration(r.TermTimeout) * time.Second,
	}
}

// LoadFile reads and parses a single service YAML file, deriving Name from
// the filename (minus extension) when the file itself doesn't set one.
func LoadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading service file %s: %w", path, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, &guardianerrors.ConfigError{Key: path, Reason: "invalid YAML", Cause: err}
	}
	if rec.Name == "" {
		base := filepath.Base(path)
		rec.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return rec, nil
}
