// Slidecast - Real-Time Slack Screenshare Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/slidecast

// Package history implements the bounded, ordered slide history shared by
// all event handlers: a JSON-encoded array of slide entries kept under a
// single key in an injected key-value store, mutated through a scoped
// read-modify-write transaction and trimmed to the most recent entries.
package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/slidecast/internal/logging"
	"github.com/tomtom215/slidecast/internal/metrics"
	"github.com/tomtom215/slidecast/internal/models"
)

// Defaults for the store configuration.
const (
	// DefaultKey is the KV key holding the serialized history.
	DefaultKey = "message_history"

	// DefaultMaxEntries bounds the retained history; older entries are
	// evicted by position, not by access pattern.
	DefaultMaxEntries = 5
)

// Store owns the slide history. All mutation goes through With; external
// components only ever see value copies, never live references into the
// retained slice.
//
// The read-modify-write over the backing KV is not compare-and-swap
// protected: two processes sharing one KV can both read the same snapshot
// and the second write wins. That lost-update window is an accepted
// property of the design (single workspace, low event rate). Within one
// process, mu serializes mutations so concurrent background handlers
// cannot race each other.
type Store struct {
	kv         KV
	key        string
	maxEntries int

	// mu is a buffered-1 semaphore held across the KV round-trip; a
	// channel rather than sync.Mutex so acquisition honors ctx.
	mu chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the KV key holding the history.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithMaxEntries overrides the retained history bound.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// NewStore creates a Store over the given KV.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		key:        DefaultKey,
		maxEntries: DefaultMaxEntries,
		mu:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read loads the current history. A missing key yields an empty history,
// not an error.
func (s *Store) Read(ctx context.Context) ([]models.SlideEntry, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var entries []models.SlideEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

// Current returns a copy of the most recent entry, or nil when the
// history is empty.
func (s *Store) Current(ctx context.Context) (*models.SlideEntry, error) {
	entries, err := s.Read(ctx)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	entry := entries[len(entries)-1]
	return &entry, nil
}

// With runs fn inside a scoped read-modify-write transaction: the history
// is loaded, fn mutates it through the History handle, and on a nil
// return the history is trimmed to the newest maxEntries and written back
// only if its serialized form changed. When fn returns an error nothing
// is written, so a failed mutation never leaves a partial snapshot.
func (s *Store) With(ctx context.Context, fn func(h *History) error) error {
	// An already-canceled context must never run fn; without this guard
	// the acquisition select below has two ready cases and may pick the
	// free semaphore.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.mu <- struct{}{}:
		defer func() { <-s.mu }()
	case <-ctx.Done():
		return ctx.Err()
	}

	orig, err := s.kv.Get(ctx, s.key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("load history: %w", err)
	}
	if len(orig) == 0 {
		// An absent key reads as the empty history, so a mutation-free
		// callback serializes back to the same bytes and writes nothing.
		orig = []byte("[]")
	}

	h := &History{}
	if err := json.Unmarshal(orig, &h.entries); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}

	if err := fn(h); err != nil {
		return err
	}

	if len(h.entries) > s.maxEntries {
		h.entries = h.entries[len(h.entries)-s.maxEntries:]
	}

	updated, err := json.Marshal(h.entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if bytes.Equal(updated, orig) {
		return nil
	}

	if err := s.kv.Set(ctx, s.key, updated); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	metrics.HistoryWrites.Inc()
	metrics.HistoryEntries.Set(float64(len(h.entries)))
	logging.Debug().Int("entries", len(h.entries)).Msg("history committed")
	return nil
}

// History is the mutable handle passed to With callbacks.
type History struct {
	entries []models.SlideEntry
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns the retained entries in order, oldest first.
func (h *History) Entries() []models.SlideEntry {
	return h.entries
}

// Append adds an entry at the newest position.
func (h *History) Append(entry models.SlideEntry) {
	h.entries = append(h.entries, entry)
}

// Current returns the most recent entry, or nil when empty. The pointer
// stays valid for the duration of the With callback.
func (h *History) Current() *models.SlideEntry {
	if len(h.entries) == 0 {
		return nil
	}
	return &h.entries[len(h.entries)-1]
}

// FindByID returns the entry with the given id and whether it is the most
// recent one, or (nil, false) when absent, including ids that have been
// trimmed away.
func (h *History) FindByID(id string) (*models.SlideEntry, bool) {
	for i := range h.entries {
		if h.entries[i].ID == id {
			return &h.entries[i], i == len(h.entries)-1
		}
	}
	return nil, false
}

// Remove deletes the entry with the given id. It reports whether an entry
// was removed and whether that entry was the most recent one.
func (h *History) Remove(id string) (removed, wasMostRecent bool) {
	for i := range h.entries {
		if h.entries[i].ID == id {
			wasMostRecent = i == len(h.entries)-1
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true, wasMostRecent
		}
	}
	return false, false
}
