package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func testState() SessionState {
	base := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	return SessionState{
		ActiveChatID: "c1",
		Chats: []Chat{
			{
				ID:        "c1",
				Title:     "Research Notion pricing",
				CreatedAt: base,
				UpdatedAt: base.Add(10 * time.Second),
				Messages: []Message{
					{ID: "m1", Role: RoleUser, Content: "Research Notion pricing", CreatedAt: base},
					{
						ID:        "m2",
						Role:      RoleAssistant,
						Content:   ErrorMarker + "status 500: rate limited",
						CreatedAt: base.Add(10 * time.Second),
						Error: &ErrorInfo{
							Kind:         ErrKindHTTP,
							Message:      "status 500: rate limited",
							RetryPayload: &RetryPayload{Message: "Research Notion pricing"},
						},
					},
				},
			},
			{ID: "c2", Title: TitleSentinel, CreatedAt: base.Add(-time.Hour), UpdatedAt: base.Add(-time.Hour)},
		},
	}
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	store := NewFileStateStore(filepath.Join(t.TempDir(), "state.json"))
	want := testState()

	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestFileStateStoreMissingSlot(t *testing.T) {
	store := NewFileStateStore(filepath.Join(t.TempDir(), "nope", "state.json"))
	got, err := store.Load()
	if err != nil {
		t.Fatalf("missing slot must not error: %v", err)
	}
	if len(got.Chats) != 0 || got.ActiveChatID != "" {
		t.Fatalf("missing slot should yield an empty state")
	}
}

func TestFileStateStoreCorruptSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStateStore(path)
	got, err := store.Load()
	if err != nil {
		t.Fatalf("corrupt slot must not error: %v", err)
	}
	if len(got.Chats) != 0 {
		t.Fatalf("corrupt slot should yield an empty state")
	}
}

func TestBoltStateStoreRoundTrip(t *testing.T) {
	store, err := NewBoltStateStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	want := testState()
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestBoltStateStoreEmpty(t *testing.T) {
	store, err := NewBoltStateStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Chats) != 0 || got.ActiveChatID != "" {
		t.Fatalf("fresh database should yield an empty state")
	}
}
