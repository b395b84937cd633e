// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the in-memory session collection and the current
// session pointer.
//
// The collection is ordered most-recent-first by creation. It is never empty
// after initialization: deleting the last session synthesizes a fresh
// default one. Every mutation is written back to the persistent store
// best-effort, so a crash never loses more than the most recent in-flight
// result.
package session

import (
	"sync"

	"github.com/jeranaias/divine-tui/internal/model"
	"github.com/jeranaias/divine-tui/internal/profile"
	"github.com/jeranaias/divine-tui/internal/store"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// Store manages the session collection. Methods are safe for concurrent use;
// the dispatch pipeline appends results from a worker goroutine while the UI
// edits the list.
type Store struct {
	mu       sync.Mutex
	kv       *store.Store
	registry *profile.Registry

	sessions  []*model.Session
	currentID string

	// onChange, when set, is invoked (outside the lock) after any mutation
	// so the UI can refresh.
	onChange func()
}

// NewStore creates a session store and loads the persisted collection,
// synthesizing a default session when nothing usable is stored.
func NewStore(kv *store.Store, registry *profile.Registry) *Store {
	s := &Store{kv: kv, registry: registry}
	s.Reload()
	return s
}

// SetOnChange registers the mutation callback.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notifyChange() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Create makes a new session for the given profile, inserts it at the front
// of the collection, makes it current and persists.
func (s *Store) Create(p profile.Profile) *model.Session {
	sess := model.NewSession(p.Key, p.RemoteModelID, p.SystemPrompt)

	s.mu.Lock()
	s.sessions = append([]*model.Session{sess}, s.sessions...)
	s.currentID = sess.ID
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
	return sess
}

// Insert adds an externally built session (the import path) as newest and
// makes it current.
func (s *Store) Insert(sess *model.Session) {
	s.mu.Lock()
	s.sessions = append([]*model.Session{sess}, s.sessions...)
	s.currentID = sess.ID
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
}

// Select makes the session with the given id current. No-op when the id is
// already current or not present in the collection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	if id == s.currentID || s.findLocked(id) == nil {
		s.mu.Unlock()
		return
	}
	s.currentID = id
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
}

// Rename sets a session's name after normalizing it (trim, placeholder for
// empty, 80-rune clamp).
func (s *Store) Rename(id, newName string) {
	s.mu.Lock()
	sess := s.findLocked(id)
	if sess == nil {
		s.mu.Unlock()
		return
	}
	sess.Name = model.CleanName(newName)
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
}

// Delete removes a session. When the current session is deleted, the first
// remaining one becomes current; when none remain, a fresh default session
// is synthesized so the collection is never empty.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.currentID == id {
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		} else {
			s.currentID = ""
		}
	}
	s.ensureNotEmptyLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
}

// =============================================================================
// DISPATCH MUTATIONS
// =============================================================================

// AppendMessage appends a message to the session with the given id and
// persists. Returns false when the session no longer exists. The dispatch
// pipeline writes results through here from its worker goroutine, so the
// mutation stays ordered against interface reads.
func (s *Store) AppendMessage(id string, msg model.Message) bool {
	s.mu.Lock()
	sess := s.findLocked(id)
	if sess == nil {
		s.mu.Unlock()
		return false
	}
	sess.Append(msg)
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
	return true
}

// SwitchProfile reassigns a session's active profile and persists. No-op
// when the id is unknown.
func (s *Store) SwitchProfile(id, modelKey, remoteModelID string) {
	s.mu.Lock()
	sess := s.findLocked(id)
	if sess == nil {
		s.mu.Unlock()
		return
	}
	sess.SwitchProfile(modelKey, remoteModelID)
	s.persistLocked()
	s.mu.Unlock()

	s.notifyChange()
}

// DropLastAssistant removes a session's most recent assistant message and
// persists. Returns false when the id is unknown or no assistant turn
// exists.
func (s *Store) DropLastAssistant(id string) bool {
	s.mu.Lock()
	sess := s.findLocked(id)
	if sess == nil {
		s.mu.Unlock()
		return false
	}
	dropped := sess.DropLastAssistant()
	if dropped {
		s.persistLocked()
	}
	s.mu.Unlock()

	if dropped {
		s.notifyChange()
	}
	return dropped
}

// =============================================================================
// ACCESS
// =============================================================================

// Current returns the current session, or nil when the collection is being
// torn down (never after initialization).
func (s *Store) Current() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.currentID)
}

// Get returns the session with the given id, or nil.
func (s *Store) Get(id string) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// List returns the sessions in order, newest first. The slice is a copy; the
// sessions are shared.
func (s *Store) List() []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Snapshot returns a deep copy of the session with the given id, or nil.
// Renders and exports read from snapshots so a result landing on the worker
// goroutine cannot mutate the history mid-read.
func (s *Store) Snapshot(id string) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(id)
	if sess == nil {
		return nil
	}
	return sess.Clone()
}

// CurrentSnapshot returns a deep copy of the current session, or nil.
func (s *Store) CurrentSnapshot() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findLocked(s.currentID)
	if sess == nil {
		return nil
	}
	return sess.Clone()
}

// CurrentModelKey returns the current session's profile key, or "" when the
// collection is being torn down.
func (s *Store) CurrentModelKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.findLocked(s.currentID); sess != nil {
		return sess.ModelKey
	}
	return ""
}

// CurrentID returns the id of the current session.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) findLocked(id string) *model.Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// =============================================================================
// MODEL PREFERENCE
// =============================================================================

// SelectedProfile resolves the persisted model preference, falling back to
// the default profile.
func (s *Store) SelectedProfile() profile.Profile {
	key, _ := s.kv.Get(store.KeyModel)
	return s.registry.Resolve(key)
}

// SetSelectedKey persists the model preference used for new sessions.
func (s *Store) SetSelectedKey(key string) {
	s.kv.Set(store.KeyModel, s.registry.Resolve(key).Key)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Persist writes the full collection to the store. Failures are swallowed:
// persistence is best-effort and never blocks the action that triggered it.
func (s *Store) Persist() {
	s.mu.Lock()
	s.persistLocked()
	s.mu.Unlock()
}

func (s *Store) persistLocked() {
	s.kv.SetJSON(store.KeyChats, s.sessions)
}

// Reload replaces the in-memory collection with the persisted one. Malformed
// stored data recovers to an empty collection (then immediately synthesizes
// the default session) rather than failing startup.
func (s *Store) Reload() {
	s.mu.Lock()
	var loaded []*model.Session
	if s.kv.GetJSON(store.KeyChats, &loaded) {
		s.sessions = sanitize(loaded)
	} else {
		s.sessions = nil
	}

	s.currentID = ""
	if len(s.sessions) > 0 {
		s.currentID = s.sessions[0].ID
	}
	s.ensureNotEmptyLocked()
	s.mu.Unlock()

	s.notifyChange()
}

// ensureNotEmptyLocked synthesizes a default session when the collection is
// empty, using the persisted model preference.
func (s *Store) ensureNotEmptyLocked() {
	if len(s.sessions) > 0 {
		return
	}
	key, _ := s.kv.Get(store.KeyModel)
	p := s.registry.Resolve(key)
	sess := model.NewSession(p.Key, p.RemoteModelID, p.SystemPrompt)
	s.sessions = []*model.Session{sess}
	s.currentID = sess.ID
	s.persistLocked()
}

// sanitize drops entries a hand-edited or corrupted blob could contain.
func sanitize(in []*model.Session) []*model.Session {
	out := in[:0]
	for _, sess := range in {
		if sess == nil || sess.ID == "" {
			continue
		}
		out = append(out, sess)
	}
	return out
}
