package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/bookshelf/internal/catalog"
	"github.com/msomdec/bookshelf/internal/domain"
)

// profileTokenTTL is how long a browser keeps the same profile.
const profileTokenTTL = 365 * 24 * time.Hour

// ProfileConfig configures the controllers built for each profile.
type ProfileConfig struct {
	CatalogSize int
	CatalogSeed uint64 // 0 draws a random catalog per profile.
	IdleTTL     time.Duration
	Controller  ControllerOptions
}

// ProfileService issues profile tokens and keeps one Controller per active
// profile. Idle controllers are dropped by Sweep; the profile's storage
// outlives them.
type ProfileService struct {
	mu      sync.Mutex
	entries map[string]*profileEntry
	storage domain.StorageProvider
	secret  []byte
	cfg     ProfileConfig
	now     func() time.Time
}

type profileEntry struct {
	controller *Controller
	last       time.Time
}

// NewProfileService creates a new ProfileService.
func NewProfileService(storage domain.StorageProvider, secret string, cfg ProfileConfig) *ProfileService {
	if cfg.CatalogSize <= 0 {
		cfg.CatalogSize = catalog.DefaultSize
	}
	return &ProfileService{
		entries: make(map[string]*profileEntry),
		storage: storage,
		secret:  []byte(secret),
		cfg:     cfg,
		now:     time.Now,
	}
}

// NewProfile allocates a profile id and returns it with its signed token.
func (s *ProfileService) NewProfile() (string, string, error) {
	id := uuid.NewString()
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(profileTokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign profile token: %w", err)
	}
	return id, token, nil
}

// ValidateToken parses and validates a profile token and returns the profile
// id from its sub claim.
func (s *ProfileService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	if _, err := uuid.Parse(sub); err != nil {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

// Controller returns the controller for profileID, building it over a fresh
// catalog the first time the profile is seen or after it was evicted. The
// build runs outside s.mu; when two requests race on a new profile the
// first controller inserted wins.
func (s *ProfileService) Controller(ctx context.Context, profileID string) (*Controller, error) {
	if c, ok := s.cached(profileID); ok {
		return c, nil
	}

	books := catalog.Generate(catalog.NewRand(s.cfg.CatalogSeed), s.cfg.CatalogSize)
	c, err := NewController(ctx, s.storage.LocalStorage(profileID), books, s.cfg.Controller)
	if err != nil {
		return nil, fmt.Errorf("build controller: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[profileID]; ok {
		e.last = s.now()
		return e.controller, nil
	}
	s.entries[profileID] = &profileEntry{controller: c, last: s.now()}
	slog.Debug("profile controller created", "profile", profileID, "books", len(books))
	return c, nil
}

func (s *ProfileService) cached(profileID string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[profileID]
	if !ok {
		return nil, false
	}
	e.last = s.now()
	return e.controller, true
}

// Active returns the number of cached controllers.
func (s *ProfileService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes controllers not used since before cutoff and returns how
// many were removed.
func (s *ProfileService) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if e.last.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RunSweeper evicts idle controllers until ctx is done. It does nothing when
// no idle TTL is configured.
func (s *ProfileService) RunSweeper(ctx context.Context) error {
	if s.cfg.IdleTTL <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(max(s.cfg.IdleTTL/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(s.now().Add(-s.cfg.IdleTTL)); n > 0 {
				slog.Info("evicted idle profiles", "count", n)
			}
		}
	}
}
