package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/repository/memory"
	"github.com/msomdec/bookshelf/internal/service"
)

func TestRegistry_LoadMissing(t *testing.T) {
	registry := service.NewRegistry(memory.NewStorage().LocalStorage("p"))

	users, err := registry.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty registry, got %v", users)
	}
}

func TestRegistry_LoadMalformed(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage().LocalStorage("p")
	registry := service.NewRegistry(storage)

	for _, raw := range []string{"not json", `{"username":"alice"}`, `[{"username":"alice","borrowedBooks":"x"}]`} {
		if err := storage.SetItem(ctx, domain.RegistryKey, raw); err != nil {
			t.Fatalf("SetItem: %v", err)
		}
		users, err := registry.Load(ctx)
		if err != nil {
			t.Fatalf("Load(%q): %v", raw, err)
		}
		if len(users) != 0 {
			t.Fatalf("Load(%q): expected empty registry, got %v", raw, users)
		}
	}
}

func TestRegistry_WireFormat(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage().LocalStorage("p")
	registry := service.NewRegistry(storage)

	if err := registry.Put(ctx, domain.User{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	raw, ok, err := storage.GetItem(ctx, domain.RegistryKey)
	if err != nil || !ok {
		t.Fatalf("GetItem: %v (present=%v)", err, ok)
	}
	want := `[{"username":"alice","password":"pw1","borrowedBooks":[]}]`
	if raw != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}

func TestRegistry_PutReplaces(t *testing.T) {
	ctx := context.Background()
	registry := service.NewRegistry(memory.NewStorage().LocalStorage("p"))

	if err := registry.Put(ctx, domain.User{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("Put alice: %v", err)
	}
	if err := registry.Put(ctx, domain.User{Username: "bob", Password: "pw2"}); err != nil {
		t.Fatalf("Put bob: %v", err)
	}
	if err := registry.Put(ctx, domain.User{Username: "alice", Password: "pw1", BorrowedBooks: []int64{3}}); err != nil {
		t.Fatalf("Put alice again: %v", err)
	}

	users, err := registry.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" || !users[0].HasBorrowed(3) {
		t.Fatalf("expected alice first with book 3, got %+v", users[0])
	}

	if _, err := registry.Find(ctx, "carol"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
