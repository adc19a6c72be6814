package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/chatwidget/storage"
)

func TestFileStore_List_EmptyDir(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFileStore(root)

	keys, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() returned %d keys, want 0", len(keys))
	}
}

func TestFileStore_List_MissingRoot(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "nonexistent"))

	keys, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() returned %d keys, want 0", len(keys))
	}
}

func TestFileStore_List_SkipsHiddenButNotHiddenRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".chatwidget")
	writeTestFile(t, root, "chatConversations", "[]")
	writeTestFile(t, root, ".tmp-123", "partial")
	writeTestFile(t, root, ".cache/file", "nested")

	store := storage.NewFileStore(root)
	keys, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("List() returned %v, want 1 key", keys)
	}
	if keys[0] != "chatConversations" {
		t.Errorf("List()[0] = %q, want %q", keys[0], "chatConversations")
	}
}

func TestFileStore_Load(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "chatConversations", `[{"title":"New Chat","messages":[]}]`)

	store := storage.NewFileStore(root)

	entries, err := store.Load(context.Background(), "chatConversations")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Load() returned %d entries, want 1", len(entries))
	}
	if string(entries[0].Value) != `[{"title":"New Chat","messages":[]}]` {
		t.Errorf("entries[0].Value = %q", string(entries[0].Value))
	}
}

func TestFileStore_Load_KeyNotFound(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())

	_, err := store.Load(context.Background(), "chatConversations")
	if !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Load() error = %v, want %v", err, storage.ErrKeyNotFound)
	}
}

func TestFileStore_InvalidKeys(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())

	for _, key := range []string{"", "../escape", "a/../../escape"} {
		t.Run(key, func(t *testing.T) {
			err := store.Save(context.Background(), storage.Entry{Key: key, Value: []byte("x")})
			if !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Save(%q) error = %v, want %v", key, err, storage.ErrInvalidKey)
			}
		})
	}
}

func TestFileStore_Save_Overwrite(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFileStore(root)

	if err := store.Save(context.Background(), storage.Entry{Key: "state", Value: []byte("v1")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(context.Background(), storage.Entry{Key: "state", Value: []byte("v2")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "state"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("file content = %q, want %q", string(got), "v2")
	}

	// No temp files left behind
	leftovers, _ := filepath.Glob(filepath.Join(root, ".tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestFileStore_Delete(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "widgets/a/state", "content")

	store := storage.NewFileStore(root)

	if err := store.Delete(context.Background(), "widgets/a/state"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "widgets", "a", "state")); !os.IsNotExist(err) {
		t.Error("file should not exist after Delete")
	}
	if _, err := os.Stat(filepath.Join(root, "widgets")); !os.IsNotExist(err) {
		t.Error("empty parent directories should be removed after Delete")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root must survive Delete: %v", err)
	}
}

func TestFileStore_Delete_NonExistent(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())

	if err := store.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("Delete() error = %v, want nil for missing key", err)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	testRoundTrip(t, store)
}

// testRoundTrip exercises Save, List and Load against any Store.
func testRoundTrip(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	original := []storage.Entry{
		{Key: "chatConversations", Value: []byte(`[{"title":"Hello...","messages":[]}]`)},
		{Key: "widgets/sidebar", Value: []byte("collapsed")},
	}

	if err := store.Save(ctx, original...); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	keys, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "chatConversations" || keys[1] != "widgets/sidebar" {
		t.Fatalf("List() = %v, want sorted keys", keys)
	}

	loaded, err := store.Load(ctx, keys...)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for i, entry := range original {
		if loaded[i].Key != entry.Key || string(loaded[i].Value) != string(entry.Value) {
			t.Errorf("entry %d = %q:%q, want %q:%q", i, loaded[i].Key, loaded[i].Value, entry.Key, entry.Value)
		}
	}

	if err := store.Delete(ctx, "widgets/sidebar", "never-written"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "widgets/sidebar"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Load() after Delete error = %v, want %v", err, storage.ErrKeyNotFound)
	}
}

// writeTestFile creates a file with the given content under root.
func writeTestFile(t *testing.T, root, key, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}
