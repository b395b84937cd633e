// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/jeranaias/divine-tui/internal/model"
	"github.com/jeranaias/divine-tui/internal/profile"
	"github.com/jeranaias/divine-tui/internal/store"
)

func newTestStore(t *testing.T) (*Store, *store.Store) {
	t.Helper()
	kv, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return NewStore(kv, profile.NewRegistry()), kv
}

func TestFreshStoreSynthesizesDefaultSession(t *testing.T) {
	s, _ := newTestStore(t)

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	cur := s.Current()
	if cur == nil {
		t.Fatal("Current = nil")
	}
	if cur.ModelKey != profile.DefaultKey {
		t.Errorf("default session ModelKey = %q, want %q", cur.ModelKey, profile.DefaultKey)
	}
	if cur.Messages[0].Role != model.RoleSystem {
		t.Errorf("first message role = %q, want system", cur.Messages[0].Role)
	}
}

func TestCreateInsertsAtFrontAndSelects(t *testing.T) {
	s, _ := newTestStore(t)
	reg := profile.NewRegistry()

	first := s.Current()
	created := s.Create(reg.Resolve("agent"))

	if s.CurrentID() != created.ID {
		t.Error("created session should be current")
	}
	list := s.List()
	if len(list) != 2 {
		t.Fatalf("Len = %d, want 2", len(list))
	}
	if list[0].ID != created.ID {
		t.Error("created session should be first (newest first order)")
	}
	if list[1].ID != first.ID {
		t.Error("previous session should have shifted down")
	}
	if created.ModelKey != "agent" {
		t.Errorf("ModelKey = %q, want agent", created.ModelKey)
	}
	if created.RemoteModelID == "" {
		t.Error("RemoteModelID snapshot missing")
	}
}

func TestSelect(t *testing.T) {
	s, _ := newTestStore(t)
	reg := profile.NewRegistry()

	a := s.Current()
	b := s.Create(reg.Default())

	s.Select(a.ID)
	if s.CurrentID() != a.ID {
		t.Errorf("CurrentID = %q, want %q", s.CurrentID(), a.ID)
	}

	// Unknown id is a no-op.
	s.Select("nope")
	if s.CurrentID() != a.ID {
		t.Error("Select(unknown) changed the current session")
	}

	_ = b
}

func TestRename(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.Current().ID

	s.Rename(id, "  my chat  ")
	if got := s.Current().Name; got != "my chat" {
		t.Errorf("Name = %q, want %q", got, "my chat")
	}

	s.Rename(id, "   ")
	if got := s.Current().Name; got != model.UntitledName {
		t.Errorf("Name = %q, want %q", got, model.UntitledName)
	}
}

func TestDeleteCurrentPromotesFirst(t *testing.T) {
	s, _ := newTestStore(t)
	reg := profile.NewRegistry()

	a := s.Current()
	b := s.Create(reg.Default())

	s.Delete(b.ID)
	if s.CurrentID() != a.ID {
		t.Errorf("CurrentID = %q, want %q", s.CurrentID(), a.ID)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestCollectionNeverEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	reg := profile.NewRegistry()

	// Arbitrary create/delete churn always leaves at least one session.
	s.Create(reg.Resolve("comfort"))
	s.Create(reg.Resolve("agent"))
	for _, sess := range s.List() {
		s.Delete(sess.ID)
		if s.Len() == 0 {
			t.Fatal("collection empty after delete")
		}
		if s.Current() == nil {
			t.Fatal("no current session after delete")
		}
	}

	// Deleting the synthesized session synthesizes another.
	s.Delete(s.Current().ID)
	if s.Len() != 1 || s.Current() == nil {
		t.Fatal("collection not replenished after deleting the last session")
	}
}

func TestPersistAndReloadRoundTrip(t *testing.T) {
	kv, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer kv.Close()
	reg := profile.NewRegistry()

	s := NewStore(kv, reg)
	created := s.Create(reg.Resolve("comfort"))
	created.Append(model.NewUserMessage("hello"))
	s.Rename(created.ID, "roundtrip")

	// A second store over the same kv sees the persisted state.
	s2 := NewStore(kv, reg)
	got := s2.Get(created.ID)
	if got == nil {
		t.Fatal("session missing after reload")
	}
	if got.Name != "roundtrip" {
		t.Errorf("Name = %q, want roundtrip", got.Name)
	}
	if len(got.Messages) != 2 {
		t.Errorf("Messages count = %d, want 2", len(got.Messages))
	}
	if s2.CurrentID() != created.ID {
		t.Error("first (newest) session should be current after reload")
	}
}

func TestReloadRecoversFromGarbage(t *testing.T) {
	kv, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer kv.Close()

	if err := kv.Set(store.KeyChats, "{definitely not json"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s := NewStore(kv, profile.NewRegistry())
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1 synthesized session", s.Len())
	}
	if s.Current() == nil {
		t.Fatal("no current session after recovery")
	}
}

func TestSynthesizedSessionUsesModelPreference(t *testing.T) {
	kv, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer kv.Close()

	if err := kv.Set(store.KeyModel, "agent"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s := NewStore(kv, profile.NewRegistry())
	if got := s.Current().ModelKey; got != "agent" {
		t.Errorf("synthesized ModelKey = %q, want agent", got)
	}
}

func TestSelectedProfilePreference(t *testing.T) {
	s, _ := newTestStore(t)

	if got := s.SelectedProfile().Key; got != profile.DefaultKey {
		t.Errorf("default SelectedProfile = %q", got)
	}

	s.SetSelectedKey("comfort")
	if got := s.SelectedProfile().Key; got != "comfort" {
		t.Errorf("SelectedProfile = %q, want comfort", got)
	}

	// Unknown keys resolve to the default before persisting.
	s.SetSelectedKey("bogus")
	if got := s.SelectedProfile().Key; got != profile.DefaultKey {
		t.Errorf("SelectedProfile after bogus = %q, want %q", got, profile.DefaultKey)
	}
}

func TestOnChangeFires(t *testing.T) {
	s, _ := newTestStore(t)

	fired := 0
	s.SetOnChange(func() { fired++ })

	s.Create(profile.NewRegistry().Default())
	if fired == 0 {
		t.Error("OnChange did not fire on Create")
	}
}

func TestAppendMessageByID(t *testing.T) {
	s, kv := newTestStore(t)
	cur := s.Current()

	if !s.AppendMessage(cur.ID, model.NewUserMessage("hello")) {
		t.Fatal("AppendMessage returned false for a live session")
	}
	if got := len(cur.Messages); got != 2 {
		t.Fatalf("messages = %d, want 2", got)
	}
	if cur.Messages[1].Content != "hello" {
		t.Errorf("appended content = %q", cur.Messages[1].Content)
	}

	if s.AppendMessage("no-such-id", model.NewUserMessage("lost")) {
		t.Error("AppendMessage returned true for an unknown id")
	}

	// The append was persisted, not just held in memory.
	reloaded := NewStore(kv, profile.NewRegistry())
	if got := len(reloaded.Get(cur.ID).Messages); got != 2 {
		t.Errorf("reloaded messages = %d, want 2", got)
	}
}

func TestSwitchProfileByID(t *testing.T) {
	s, kv := newTestStore(t)
	reg := profile.NewRegistry()
	sess := s.Create(reg.Resolve("comfort"))

	def := reg.Default()
	s.SwitchProfile(sess.ID, def.Key, def.RemoteModelID)

	if sess.ModelKey != def.Key || sess.RemoteModelID != def.RemoteModelID {
		t.Errorf("profile = %q/%q, want %q/%q", sess.ModelKey, sess.RemoteModelID, def.Key, def.RemoteModelID)
	}

	s.SwitchProfile("no-such-id", "agent", "whatever")

	reloaded := NewStore(kv, profile.NewRegistry())
	if got := reloaded.Get(sess.ID).ModelKey; got != def.Key {
		t.Errorf("reloaded ModelKey = %q, want %q", got, def.Key)
	}
}

func TestDropLastAssistantByID(t *testing.T) {
	s, _ := newTestStore(t)
	cur := s.Current()
	s.AppendMessage(cur.ID, model.NewUserMessage("q"))
	s.AppendMessage(cur.ID, model.NewAssistantMessage("a"))

	if !s.DropLastAssistant(cur.ID) {
		t.Fatal("DropLastAssistant returned false with an assistant turn present")
	}
	if got := len(cur.Messages); got != 2 {
		t.Errorf("messages = %d, want 2", got)
	}
	if s.DropLastAssistant(cur.ID) {
		t.Error("DropLastAssistant returned true with no assistant turn left")
	}
	if s.DropLastAssistant("no-such-id") {
		t.Error("DropLastAssistant returned true for an unknown id")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	s, _ := newTestStore(t)
	cur := s.Current()
	s.AppendMessage(cur.ID, model.NewUserMessage("original"))

	snap := s.Snapshot(cur.ID)
	if snap == nil {
		t.Fatal("Snapshot = nil for a live session")
	}
	snap.Name = "scratch"
	snap.Messages[1].Content = "mutated"
	snap.Messages = append(snap.Messages, model.NewUserMessage("extra"))

	if cur.Name == "scratch" {
		t.Error("snapshot name mutation reached the stored session")
	}
	if cur.Messages[1].Content != "original" {
		t.Errorf("stored content = %q, want original", cur.Messages[1].Content)
	}
	if len(cur.Messages) != 2 {
		t.Errorf("stored messages = %d, want 2", len(cur.Messages))
	}

	if s.Snapshot("no-such-id") != nil {
		t.Error("Snapshot for an unknown id should be nil")
	}
	if got := s.CurrentSnapshot(); got == nil || got.ID != cur.ID {
		t.Error("CurrentSnapshot did not return the current session")
	}
}

func TestCurrentModelKey(t *testing.T) {
	s, _ := newTestStore(t)
	reg := profile.NewRegistry()
	s.Create(reg.Resolve("agent"))

	if got := s.CurrentModelKey(); got != "agent" {
		t.Errorf("CurrentModelKey = %q, want agent", got)
	}
}
