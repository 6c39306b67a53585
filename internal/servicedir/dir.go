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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// pattern matches the YAML service files a directory scan considers —
// "*.yaml" and "*.yml" at any depth under the service directory, so
// operators can group related daemons into subdirectories.
const pattern = "**/*.{yaml,yml}"

// List scans dir for service files matching pattern and returns their
// parsed Records sorted by name. A missing directory is not an error — it
// simply yields zero records, mirroring how internal/config.Load treats a
// missing config file.
func List(dir string) ([]Record, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning service directory %s: %w", dir, err)
	}

	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		rec, err := LoadFile(filepath.Join(dir, m))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Find scans dir for the service whose Record.Name equals name (the file's
// name field, or its basename minus extension when that field is empty),
// returning an error if none matches.
func Find(dir, name string) (Record, error) {
	records, err := List(dir)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if rec.Name == name {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("no service named %q in %s", name, dir)
}
