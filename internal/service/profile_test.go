package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/repository/memory"
	"github.com/msomdec/bookshelf/internal/service"
)

const testProfileSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestProfileService(t *testing.T) *service.ProfileService {
	t.Helper()
	return service.NewProfileService(memory.NewStorage(), testProfileSecret, service.ProfileConfig{
		CatalogSize: 5,
		CatalogSeed: 7,
	})
}

func TestProfileService_TokenRoundTrip(t *testing.T) {
	profiles := newTestProfileService(t)

	id, token, err := profiles.NewProfile()
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	got, err := profiles.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got != id {
		t.Fatalf("got profile %q, want %q", got, id)
	}
}

func TestProfileService_ValidateToken_Invalid(t *testing.T) {
	profiles := newTestProfileService(t)
	other := service.NewProfileService(memory.NewStorage(), "another-secret-key-for-unit-tests-000000", service.ProfileConfig{})
	_, foreign, err := other.NewProfile()
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "0b7f1a52-3f6e-4a8e-9c1d-0d3c1f5c2a11",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte(testProfileSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	notUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "42",
	}).SignedString([]byte(testProfileSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"subject not a profile id", notUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := profiles.ValidateToken(tt.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestProfileService_ControllerIsCachedPerProfile(t *testing.T) {
	profiles := newTestProfileService(t)
	ctx := context.Background()

	a1, err := profiles.Controller(ctx, "a")
	if err != nil {
		t.Fatalf("Controller: %v", err)
	}
	a2, err := profiles.Controller(ctx, "a")
	if err != nil {
		t.Fatalf("Controller: %v", err)
	}
	b, err := profiles.Controller(ctx, "b")
	if err != nil {
		t.Fatalf("Controller: %v", err)
	}

	if a1 != a2 {
		t.Fatal("expected the same controller for one profile")
	}
	if a1 == b {
		t.Fatal("expected separate controllers per profile")
	}
	if profiles.Active() != 2 {
		t.Fatalf("expected 2 active profiles, got %d", profiles.Active())
	}

	if out, err := a1.Login(ctx, "alice", "pw1"); err != nil || !out.Accepted {
		t.Fatalf("Login: %+v %v", out, err)
	}
	if b.Username() != "" {
		t.Fatalf("expected profile b logged out, got %q", b.Username())
	}
}

// gatedProvider blocks reads of one profile's storage until release is closed.
type gatedProvider struct {
	*memory.Storage
	gated   string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *gatedProvider) LocalStorage(profileID string) domain.LocalStorage {
	ls := p.Storage.LocalStorage(profileID)
	if profileID != p.gated {
		return ls
	}
	return &gatedStorage{LocalStorage: ls, provider: p}
}

type gatedStorage struct {
	domain.LocalStorage
	provider *gatedProvider
}

func (s *gatedStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.provider.once.Do(func() { close(s.provider.entered) })
	<-s.provider.release
	return s.LocalStorage.GetItem(ctx, key)
}

func TestProfileService_SlowBuildDoesNotBlockOtherProfiles(t *testing.T) {
	provider := &gatedProvider{
		Storage: memory.NewStorage(),
		gated:   "slow",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	profiles := service.NewProfileService(provider, testProfileSecret, service.ProfileConfig{CatalogSize: 5, CatalogSeed: 7})
	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() {
		_, err := profiles.Controller(ctx, "slow")
		slowDone <- err
	}()
	<-provider.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := profiles.Controller(ctx, "fast")
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("Controller(fast): %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("building one profile blocked another")
	}

	close(provider.release)
	if err := <-slowDone; err != nil {
		t.Fatalf("Controller(slow): %v", err)
	}
	if profiles.Active() != 2 {
		t.Fatalf("expected 2 active profiles, got %d", profiles.Active())
	}
}

func TestProfileService_ConcurrentFirstUseSharesController(t *testing.T) {
	profiles := newTestProfileService(t)
	ctx := context.Background()

	const n = 16
	got := make([]*service.Controller, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := profiles.Controller(ctx, "a")
			if err != nil {
				t.Errorf("Controller: %v", err)
				return
			}
			got[i] = c
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatalf("caller %d got a different controller", i)
		}
	}
	if profiles.Active() != 1 {
		t.Fatalf("expected 1 active profile, got %d", profiles.Active())
	}
}

func TestProfileService_SweepKeepsStorage(t *testing.T) {
	profiles := newTestProfileService(t)
	ctx := context.Background()

	c, err := profiles.Controller(ctx, "a")
	if err != nil {
		t.Fatalf("Controller: %v", err)
	}
	if out, err := c.Login(ctx, "alice", "pw1"); err != nil || !out.Accepted {
		t.Fatalf("Login: %+v %v", out, err)
	}

	if n := profiles.Sweep(time.Now().Add(-time.Hour)); n != 0 {
		t.Fatalf("expected nothing evicted yet, got %d", n)
	}
	if n := profiles.Sweep(time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	if profiles.Active() != 0 {
		t.Fatalf("expected no active profiles, got %d", profiles.Active())
	}

	fresh, err := profiles.Controller(ctx, "a")
	if err != nil {
		t.Fatalf("Controller: %v", err)
	}
	if fresh == c {
		t.Fatal("expected a new controller after eviction")
	}
	if fresh.Username() != "alice" {
		t.Fatalf("expected session restored from storage, got %q", fresh.Username())
	}
}

func TestProfileService_RunSweeperStops(t *testing.T) {
	profiles := newTestProfileService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- profiles.RunSweeper(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunSweeper: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
