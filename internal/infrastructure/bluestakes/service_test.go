package bluestakes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

// authFlakyServer rejects the named stale token and accepts tokens issued by
// its own login endpoint.
func authFlakyServer(t *testing.T, detailAttempts, loginCalls *int32, acceptFresh bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login-json":
			atomic.AddInt32(loginCalls, 1)
			json.NewEncoder(w).Encode(map[string]string{"Authorization": "Bearer fresh-token"})
		case "/tickets/A1":
			atomic.AddInt32(detailAttempts, 1)
			token := r.Header.Get("Authorization")
			if acceptFresh && token == "Bearer fresh-token" {
				w.Write([]byte(`{"ticket":"A1"}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func newTestService(baseURL string, store CredentialStore) *Service {
	client := newTestClient(baseURL)
	tokens := NewTokenCache(store, client, time.Hour, logger.NewLogger())
	return NewService(client, tokens, logger.NewLogger())
}

func staleTokenStore() *memStore {
	stale := "stale-token"
	expires := time.Now().Add(time.Hour)
	return newMemStore(&company.Company{
		ID:                1,
		Username:          "acme",
		EncryptedPassword: "enc",
		Token:             &stale,
		TokenExpiresAt:    &expires,
	})
}

func TestService_RetriesOnceOnAuthRejection(t *testing.T) {
	var detailAttempts, loginCalls int32
	srv := authFlakyServer(t, &detailAttempts, &loginCalls, true)
	defer srv.Close()

	svc := newTestService(srv.URL, staleTokenStore())

	payload, found, err := svc.TicketDetails(context.Background(), testCreds(), "A1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"ticket":"A1"}`, string(payload))

	// One rejected attempt with the stale cached token, one login, one
	// successful retry.
	assert.Equal(t, int32(2), atomic.LoadInt32(&detailAttempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loginCalls))
}

func TestService_SecondAuthFailureIsFatal(t *testing.T) {
	var detailAttempts, loginCalls int32
	srv := authFlakyServer(t, &detailAttempts, &loginCalls, false)
	defer srv.Close()

	svc := newTestService(srv.URL, staleTokenStore())

	_, _, err := svc.TicketDetails(context.Background(), testCreds(), "A1")
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamAuthError(err))

	// Exactly two attempts, never a third.
	assert.Equal(t, int32(2), atomic.LoadInt32(&detailAttempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loginCalls))
}

func TestService_NoRetryWhenTokenAccepted(t *testing.T) {
	var detailAttempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&detailAttempts, 1)
		w.Write([]byte(`{"ticket":"A1"}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, staleTokenStore())

	_, found, err := svc.TicketDetails(context.Background(), testCreds(), "A1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int32(1), atomic.LoadInt32(&detailAttempts))
}

func TestService_UpdateAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"update":true}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, staleTokenStore())

	updatable, err := svc.UpdateAvailable(context.Background(), testCreds(), "A1")
	require.NoError(t, err)
	assert.True(t, updatable)
}
