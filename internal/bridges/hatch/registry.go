package hatch

import (
	"fmt"
	"sync"
)

// Registry tracks live entries by entry ID.
//
// Thread Safety: All methods are safe for concurrent use.
type Registry struct {
	entries map[string]*Entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Add registers an entry under its ID.
//
// Returns:
//   - error: ErrDuplicateEntry if the ID is already registered
func (r *Registry) Add(entry *Entry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("hatch: entry with id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.ID)
	}
	r.entries[entry.ID] = entry
	return nil
}

// Get returns the entry for an ID.
//
// Returns:
//   - *Entry: The registered entry
//   - error: ErrEntryNotFound if the ID is unknown
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return entry, nil
}

// List returns all registered entries.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	return entries
}

// Count returns the number of registered entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// FailingCount returns the number of entries whose most recent refresh
// failed.
func (r *Registry) FailingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	failing := 0
	for _, entry := range r.entries {
		if !entry.Coordinator.LastUpdateSuccess() {
			failing++
		}
	}
	return failing
}

// Unload stops an entry's polling, disconnects the device, and removes
// it from the registry.
//
// Returns:
//   - error: ErrEntryNotFound if the ID is unknown; a disconnect error
//     is reported but the entry is removed regardless
func (r *Registry) Unload(id string) error {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	entry.Coordinator.Stop()
	if err := entry.Device.Disconnect(); err != nil {
		return fmt.Errorf("unloading %s: %w", id, err)
	}
	return nil
}

// UnloadAll unloads every entry. Used during shutdown.
func (r *Registry) UnloadAll() {
	for _, entry := range r.List() {
		r.Unload(entry.ID) //nolint:errcheck // Best effort during shutdown
	}
}
