package memory_test

import (
	"context"
	"testing"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/repository/memory"
)

var _ domain.StorageProvider = (*memory.Storage)(nil)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage().LocalStorage("p1")

	if _, ok, _ := store.GetItem(ctx, domain.SessionKey); ok {
		t.Fatal("expected empty store")
	}
	if err := store.SetItem(ctx, domain.SessionKey, "alice"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	got, ok, _ := store.GetItem(ctx, domain.SessionKey)
	if !ok || got != "alice" {
		t.Fatalf("expected alice, got %q", got)
	}
	if err := store.RemoveItem(ctx, domain.SessionKey); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, ok, _ := store.GetItem(ctx, domain.SessionKey); ok {
		t.Fatal("expected key removed")
	}
}

func TestLocalStorage_ProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()

	_ = storage.LocalStorage("a").SetItem(ctx, domain.RegistryKey, "[]")

	if _, ok, _ := storage.LocalStorage("b").GetItem(ctx, domain.RegistryKey); ok {
		t.Fatal("profile b must not see profile a's data")
	}
	// A second handle on the same profile sees the same data.
	if _, ok, _ := storage.LocalStorage("a").GetItem(ctx, domain.RegistryKey); !ok {
		t.Fatal("expected profile a data through a new handle")
	}
}
