package bluestakes

import (
	"context"
	"sync"
	"time"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

const (
	// expiryBuffer is subtracted from the stored expiry: a token within this
	// window of expiring is refreshed rather than reused.
	expiryBuffer = 5 * time.Minute

	// expiringSoonWindow classifies tokens for cache statistics.
	expiringSoonWindow = 10 * time.Minute

	defaultTokenTTL = time.Hour
)

// CredentialStore is the persistence surface the token cache needs. The
// token columns it writes are owned exclusively by this cache.
type CredentialStore interface {
	FindByID(ctx context.Context, id uint) (*company.Company, error)
	StoreToken(ctx context.Context, companyID uint, token string, expiresAt time.Time) error
	ClearToken(ctx context.Context, companyID uint) (bool, error)
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
	ListTokenStates(ctx context.Context) ([]company.TokenState, error)
}

// rawAuthenticator is the one client operation the cache depends on.
type rawAuthenticator interface {
	LoginRaw(ctx context.Context, username, password string) (string, error)
}

// Stats summarizes the cached token population.
type Stats struct {
	TotalCached  int `json:"total_cached"`
	Valid        int `json:"valid"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
}

// TokenCache owns per-company token lifecycle: reuse while fresh, login when
// stale, invalidate on upstream rejection, sweep on schedule.
//
// Concurrency: a keyed mutex makes refresh strictly single-flight per
// company. Concurrent callers for the same company serialize and at most one
// of them logs in; distinct companies proceed independently.
type TokenCache struct {
	store CredentialStore
	auth  rawAuthenticator
	ttl   time.Duration

	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	logger logger.Interface

	// now is swappable in tests.
	now func() time.Time
}

// NewTokenCache creates a token cache. A non-positive ttl falls back to one
// hour.
func NewTokenCache(store CredentialStore, auth rawAuthenticator, ttl time.Duration, log logger.Interface) *TokenCache {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenCache{
		store:  store,
		auth:   auth,
		ttl:    ttl,
		locks:  make(map[uint]*sync.Mutex),
		logger: log,
		now:    time.Now,
	}
}

// GetOrRefresh returns a usable token for the company, reusing the stored one
// when it has more than the expiry buffer left and logging in otherwise.
// Auth failures are never swallowed; callers see the typed error.
func (c *TokenCache) GetOrRefresh(ctx context.Context, creds company.Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", errors.NewCredentialsMissingError("company has no bluestakes credentials")
	}

	lock := c.lockFor(creds.CompanyID)
	lock.Lock()
	defer lock.Unlock()

	comp, err := c.store.FindByID(ctx, creds.CompanyID)
	if err != nil {
		return "", err
	}

	now := c.now()
	if comp.Token != nil && comp.TokenExpiresAt != nil && now.Add(expiryBuffer).Before(*comp.TokenExpiresAt) {
		return *comp.Token, nil
	}

	token, err := c.auth.LoginRaw(ctx, creds.Username, creds.Password)
	if err != nil {
		return "", err
	}

	expiresAt := now.Add(c.ttl)
	if err := c.store.StoreToken(ctx, creds.CompanyID, token, expiresAt); err != nil {
		return "", err
	}

	c.logger.Infow("refreshed bluestakes token",
		"company_id", creds.CompanyID,
		"expires_at", expiresAt,
	)
	return token, nil
}

// Invalidate clears the stored token, reporting whether one was present.
// Called after a 401/403 so the next request logs in fresh.
func (c *TokenCache) Invalidate(ctx context.Context, companyID uint) (bool, error) {
	cleared, err := c.store.ClearToken(ctx, companyID)
	if err != nil {
		return false, err
	}
	if cleared {
		c.logger.Infow("invalidated bluestakes token", "company_id", companyID)
	}
	return cleared, nil
}

// SweepExpired clears every token already past its expiry and returns how
// many were swept.
func (c *TokenCache) SweepExpired(ctx context.Context) (int64, error) {
	swept, err := c.store.ClearExpiredTokens(ctx, c.now())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		c.logger.Infow("swept expired bluestakes tokens", "count", swept)
	}
	return swept, nil
}

// CacheStats classifies every cached token by its expiry.
func (c *TokenCache) CacheStats(ctx context.Context) (*Stats, error) {
	states, err := c.store.ListTokenStates(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	stats := &Stats{TotalCached: len(states)}
	for _, st := range states {
		if st.ExpiresAt == nil || !st.ExpiresAt.After(now) {
			stats.Expired++
			continue
		}
		stats.Valid++
		if st.ExpiresAt.Sub(now) <= expiringSoonWindow {
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}

func (c *TokenCache) lockFor(companyID uint) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.locks[companyID]; ok {
		return l
	}
	l := &sync.Mutex{}
	c.locks[companyID] = l
	return l
}
