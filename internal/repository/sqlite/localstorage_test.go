package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/repository/sqlite"
)

func TestLocalStorage_GetItem_Missing(t *testing.T) {
	db := newTestDB(t)
	store := db.LocalStorage("profile-a")

	_, ok, err := store.GetItem(context.Background(), domain.SessionKey)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if ok {
		t.Fatal("expected missing key to report ok=false")
	}
}

func TestLocalStorage_SetGetOverwrite(t *testing.T) {
	db := newTestDB(t)
	store := db.LocalStorage("profile-a")
	ctx := context.Background()

	if err := store.SetItem(ctx, domain.SessionKey, "alice"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := store.SetItem(ctx, domain.SessionKey, "bob"); err != nil {
		t.Fatalf("SetItem overwrite: %v", err)
	}

	got, ok, err := store.GetItem(ctx, domain.SessionKey)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !ok || got != "bob" {
		t.Fatalf("expected bob, got %q (ok=%v)", got, ok)
	}
}

func TestLocalStorage_RemoveItem(t *testing.T) {
	db := newTestDB(t)
	store := db.LocalStorage("profile-a")
	ctx := context.Background()

	if err := store.SetItem(ctx, domain.SessionKey, "alice"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := store.RemoveItem(ctx, domain.SessionKey); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	// Removing an absent key is not an error.
	if err := store.RemoveItem(ctx, domain.SessionKey); err != nil {
		t.Fatalf("RemoveItem absent: %v", err)
	}

	if _, ok, _ := store.GetItem(ctx, domain.SessionKey); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestLocalStorage_ProfilesAreIsolated(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.LocalStorage("profile-a").SetItem(ctx, domain.RegistryKey, `[{"username":"alice"}]`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}

	if _, ok, _ := db.LocalStorage("profile-b").GetItem(ctx, domain.RegistryKey); ok {
		t.Fatal("profile-b must not see profile-a's registry")
	}
}

func TestLocalStorage_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db.LocalStorage("p").SetItem(ctx, domain.SessionKey, "alice"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	db.Close()

	reopened, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.LocalStorage("p").GetItem(ctx, domain.SessionKey)
	if err != nil || !ok || got != "alice" {
		t.Fatalf("expected alice after reopen, got %q ok=%v err=%v", got, ok, err)
	}
}
