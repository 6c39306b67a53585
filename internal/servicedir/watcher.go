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
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event describes one change observed in a service directory.
type Event struct {
	// Kind is "added", "changed", or "removed".
	Kind string
	// Name is the service name affected: the record's name for
	// "added"/"changed", the file's basename minus extension for "removed".
	Name string
	// Record is the parsed spec for "added"/"changed"; zero for "removed".
	Record Record
}

// Watcher watches a service directory for YAML file changes and emits
// Events describing them, so a long-running process can react to service
// files being added, changed or removed. It never starts or stops a daemon
// itself.
type Watcher struct {
	dir       string
	fsw       *fsnotify.Watcher
	eventChan chan Event
	logger    *slog.Logger
}

// NewWatcher creates a Watcher rooted at dir. dir must already exist.
func NewWatcher(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolving service directory path: %w", err)
	}
	if err := fsw.Add(absDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching service directory %s: %w", absDir, err)
	}

	return &Watcher{
		dir:       absDir,
		fsw:       fsw,
		eventChan: make(chan Event, 32),
		logger:    slog.Default().With(slog.String("component", "servicedir"), slog.String("dir", absDir)),
	}, nil
}

// Events returns the channel Watcher publishes changes to. It's closed
// once Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.eventChan
}

// Run processes fsnotify events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.eventChan)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("service directory watcher stopped")
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("service directory watch error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	base := filepath.Base(ev.Name)
	ext := filepath.Ext(base)
	if ext != ".yaml" && ext != ".yml" {
		return
	}
	name := strings.TrimSuffix(base, ext)

	switch {
	case ev.Op&fsnotify.Remove != 0:
		w.publish(Event{Kind: "removed", Name: name})
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		rec, err := LoadFile(ev.Name)
		if err != nil {
			w.logger.Warn("failed to load changed service file", "path", ev.Name, "error", err)
			return
		}
		kind := "changed"
		if ev.Op&fsnotify.Create != 0 {
			kind = "added"
		}
		w.publish(Event{Kind: kind, Name: rec.Name, Record: rec})
	}
}

func (w *Watcher) publish(ev Event) {
	select {
	case w.eventChan <- ev:
	default:
		w.logger.Warn("service directory event channel full, dropping event", "kind", ev.Kind, "name", ev.Name)
	}
}
