// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DraftAutosaveWait is how long typing must pause before the in-progress
// draft is persisted.
const DraftAutosaveWait = time.Second

// Draft is a persisted in-progress authoring form.
type Draft struct {
	CreateInput
	SavedAt time.Time `json:"saved_at"`
}

// DraftStore persists the single in-progress draft to one fixed file.
// There is exactly one draft slot: every save overwrites it, last write
// wins. Autosave debounces writes so a burst of keystrokes produces one
// disk write, not one per key.
type DraftStore struct {
	mu       sync.Mutex
	path     string
	log      *slog.Logger
	debounce *Debouncer
}

// NewDraftStore creates a store writing to draft.json under dir. The
// directory is created if missing.
func NewDraftStore(dir string, log *slog.Logger) (*DraftStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &DraftStore{
		path:     filepath.Join(dir, "draft.json"),
		log:      log,
		debounce: NewDebouncer(DraftAutosaveWait),
	}, nil
}

// Autosave schedules a persist of the current form contents after the
// debounce window. Each edit resets the window and replaces the pending
// snapshot, so only the latest contents ever reach disk. Write failures
// are logged, not surfaced: autosave is a safety net, not a user action.
func (d *DraftStore) Autosave(input CreateInput) {
	d.debounce.Trigger(func() {
		if err := d.Save(input); err != nil {
			d.log.Error("draft autosave failed", "error", err)
		}
	})
}

// Save persists the draft immediately. The write goes through a temp
// file and rename so a crash mid-write never leaves a torn draft.
func (d *DraftStore) Save(input CreateInput) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	draft := Draft{CreateInput: input, SavedAt: time.Now()}
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("replace draft: %w", err)
	}
	return nil
}

// Load returns the persisted draft, or nil when none exists.
func (d *DraftStore) Load() (*Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

// Clear cancels any pending autosave and removes the persisted draft.
// Called after a successful submit so the next authoring session starts
// empty.
func (d *DraftStore) Clear() error {
	d.debounce.Cancel()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}
