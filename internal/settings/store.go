package settings

import (
	"context"
	"fmt"
	"sync"
)

// Repository persists preference entries for one scope (an admin's user id).
// Entries are flat string key/value pairs; the Store owns their meaning.
type Repository interface {
	Load(ctx context.Context, scope string) (map[string]string, error)
	Save(ctx context.Context, scope string, entries map[string]string) error
}

// Store holds one admin's settings in memory and writes them through repo
// on Save, or on every change while AutoSave is on.
type Store struct {
	mu    sync.Mutex
	repo  Repository
	scope string
	cur   Settings
	dirty bool
}

// NewStore returns a store holding the defaults. Call Load to read what was
// persisted.
func NewStore(repo Repository, scope string) *Store {
	return &Store{repo: repo, scope: scope, cur: Defaults()}
}

// Load reads persisted entries, filling missing keys with defaults.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	entries, err := s.repo.Load(ctx, s.scope)
	if err != nil {
		return Defaults(), fmt.Errorf("load settings: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = fromEntries(entries)
	s.dirty = false
	return s.cur, nil
}

// Get returns the current in-memory settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Dirty reports whether there are changes not yet saved.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Update sets a single value addressed by a dotted path such as
// "notifications.email".
func (s *Store) Update(ctx context.Context, path string, value any) (Settings, error) {
	s.mu.Lock()
	next := s.cur
	if err := apply(&next, path, value); err != nil {
		s.mu.Unlock()
		return s.Get(), err
	}
	s.cur = next
	s.dirty = true
	s.mu.Unlock()
	return s.autosave(ctx)
}

// Replace swaps all settings at once.
func (s *Store) Replace(ctx context.Context, next Settings) (Settings, error) {
	if err := check(next); err != nil {
		return s.Get(), err
	}
	palette := Defaults().CustomTheme
	mergePalette(&palette, next.CustomTheme)
	next.CustomTheme = palette

	s.mu.Lock()
	s.cur = next
	s.dirty = true
	s.mu.Unlock()
	return s.autosave(ctx)
}

// Reset restores the defaults. Persisted like any other change.
func (s *Store) Reset(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	s.cur = Defaults()
	s.dirty = true
	s.mu.Unlock()
	return s.autosave(ctx)
}

// Save writes the current settings synchronously.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	entries := toEntries(s.cur)
	s.mu.Unlock()
	if err := s.repo.Save(ctx, s.scope, entries); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}

func (s *Store) autosave(ctx context.Context) (Settings, error) {
	cur := s.Get()
	if !cur.AutoSave {
		return cur, nil
	}
	return cur, s.Save(ctx)
}

func check(s Settings) error {
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeCustom:
	default:
		return fmt.Errorf("theme=%q: %w", s.Theme, ErrInvalidValue)
	}
	if s.ItemsPerPage < 1 {
		return fmt.Errorf("itemsPerPage: %w", ErrInvalidValue)
	}
	return nil
}

// Registry keeps one Store per scope so unsaved edits live for the life of
// the process.
type Registry struct {
	repo   Repository
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry over repo.
func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo, stores: map[string]*Store{}}
}

// For returns the store of scope, loading it on first use.
func (r *Registry) For(ctx context.Context, scope string) (*Store, error) {
	r.mu.Lock()
	st, ok := r.stores[scope]
	r.mu.Unlock()
	if ok {
		return st, nil
	}

	st = NewStore(r.repo, scope)
	if _, err := st.Load(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stores[scope]; ok {
		return existing, nil
	}
	r.stores[scope] = st
	return st, nil
}

// Forget drops the in-memory store of scope, discarding unsaved edits.
func (r *Registry) Forget(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, scope)
}
