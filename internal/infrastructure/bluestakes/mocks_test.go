package bluestakes

import (
	"context"
	"sync"
	"time"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/shared/errors"
)

// memStore is an in-memory CredentialStore for token cache tests.
type memStore struct {
	mu        sync.Mutex
	companies map[uint]*company.Company
}

func newMemStore(companies ...*company.Company) *memStore {
	s := &memStore{companies: make(map[uint]*company.Company)}
	for _, c := range companies {
		cp := *c
		s.companies[c.ID] = &cp
	}
	return s
}

func (s *memStore) FindByID(ctx context.Context, id uint) (*company.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, errors.NewNotFoundError("company not found")
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) StoreToken(ctx context.Context, companyID uint, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[companyID]
	if !ok {
		return errors.NewNotFoundError("company not found")
	}
	c.Token = &token
	c.TokenExpiresAt = &expiresAt
	return nil
}

func (s *memStore) ClearToken(ctx context.Context, companyID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[companyID]
	if !ok || c.Token == nil {
		return false, nil
	}
	c.Token = nil
	c.TokenExpiresAt = nil
	return true, nil
}

func (s *memStore) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var swept int64
	for _, c := range s.companies {
		if c.Token != nil && c.TokenExpiresAt != nil && !c.TokenExpiresAt.After(now) {
			c.Token = nil
			c.TokenExpiresAt = nil
			swept++
		}
	}
	return swept, nil
}

func (s *memStore) ListTokenStates(ctx context.Context) ([]company.TokenState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var states []company.TokenState
	for _, c := range s.companies {
		if c.Token == nil {
			continue
		}
		states = append(states, company.TokenState{CompanyID: c.ID, ExpiresAt: c.TokenExpiresAt})
	}
	return states, nil
}

// mockAuthenticator counts logins and hands out sequential tokens.
type mockAuthenticator struct {
	mu       sync.Mutex
	logins   int
	tokens   []string
	LoginErr error
}

func (a *mockAuthenticator) LoginRaw(ctx context.Context, username, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.LoginErr != nil {
		return "", a.LoginErr
	}
	a.logins++
	if len(a.tokens) >= a.logins {
		return a.tokens[a.logins-1], nil
	}
	return "token", nil
}

func (a *mockAuthenticator) loginCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}
