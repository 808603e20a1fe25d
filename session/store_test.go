package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/taskdeck/task"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(WithPath(filepath.Join(t.TempDir(), "session.json")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)

	saved := &Session{
		Token: "T",
		User:  task.User{ID: 1, Username: "a", Email: "a@b.com"},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Token != saved.Token {
		t.Errorf("Load() token = %q, want %q", got.Token, saved.Token)
	}
	if got.User != saved.User {
		t.Errorf("Load() user = %+v, want %+v", got.User, saved.User)
	}
}

func TestLoadAbsent(t *testing.T) {
	store := testStore(t)

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession", err)
	}
}

func TestLoadCorruptFailsSoft(t *testing.T) {
	store := testStore(t)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession", err)
	}
}

func TestLoadEmptyToken(t *testing.T) {
	store := testStore(t)

	if err := os.WriteFile(store.Path(), []byte(`{"token":"","user":{"id":1}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession", err)
	}
}

func TestSaveRejectsEmptySession(t *testing.T) {
	store := testStore(t)

	if err := store.Save(nil); err == nil {
		t.Error("Save(nil) should fail")
	}
	if err := store.Save(&Session{}); err == nil {
		t.Error("Save(empty token) should fail")
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := testStore(t)

	first := &Session{Token: "old", User: task.User{ID: 1, Username: "a"}}
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}
	second := &Session{Token: "new", User: task.User{ID: 2, Username: "b"}}
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "new" || got.User.ID != 2 {
		t.Errorf("Load() = %+v, want the second session", got)
	}
}

func TestClear(t *testing.T) {
	store := testStore(t)

	if err := store.Save(&Session{Token: "T", User: task.User{ID: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() after Clear() error = %v, want ErrNoSession", err)
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
