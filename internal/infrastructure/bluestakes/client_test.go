package bluestakes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/shared/config"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.BlueStakesConfig{
		BaseURL:              baseURL,
		LoginTimeoutSeconds:  5,
		SearchTimeoutSeconds: 5,
		DetailTimeoutSeconds: 5,
	}, logger.NewLogger())
}

func TestClient_LoginRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login-json", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "acme", body["username"])
		require.Equal(t, "secret", body["password"])

		json.NewEncoder(w).Encode(map[string]string{"Authorization": "Bearer tok-123"})
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL).LoginRaw(context.Background(), "acme", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestClient_LoginRaw_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).LoginRaw(context.Background(), "acme", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamAuthError(err))
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tickets/search", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		q := r.URL.Query()
		require.Equal(t, "2026-07-04", q.Get("start"))
		require.Equal(t, "2026-08-01", q.Get("end"))
		require.Equal(t, "100", q.Get("limit"))
		require.Equal(t, "200", q.Get("offset"))

		w.Write([]byte(`{"data":[{"ticket":"A1"},{"ticket":"A2"}]}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).Search(context.Background(), "tok-123", ticket.SearchQuery{
		Start:  time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Limit:  100,
		Offset: 200,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.JSONEq(t, `{"ticket":"A1"}`, string(page[0]))
}

func TestClient_Search_TokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "stale", ticket.SearchQuery{Limit: 100})
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamAuthError(err))
}

func TestClient_GetTicket_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	payload, found, err := newTestClient(srv.URL).GetTicket(context.Background(), "tok", "A404")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, payload)
}

func TestClient_GetSecondaryFunctions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tickets/A1/secondary-functions", r.URL.Path)
		w.Write([]byte(`{"update":true}`))
	}))
	defer srv.Close()

	fns, err := newTestClient(srv.URL).GetSecondaryFunctions(context.Background(), "tok", "A1")
	require.NoError(t, err)
	assert.True(t, fns.Update)
}

func TestClient_GetSecondaryFunctions_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fns, err := newTestClient(srv.URL).GetSecondaryFunctions(context.Background(), "tok", "A404")
	require.NoError(t, err)
	assert.False(t, fns.Update)
}

func TestClient_GetResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tickets/A1/responses", r.URL.Path)
		w.Write([]byte(`{"responses":[{"utility":"gas","status":"clear"}]}`))
	}))
	defer srv.Close()

	responses, err := newTestClient(srv.URL).GetResponses(context.Background(), "tok", "A1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"utility":"gas","status":"clear"}]`, string(responses))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	client.detailClient.Timeout = 50 * time.Millisecond

	_, _, err := client.GetTicket(context.Background(), "tok", "A1")
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamUnavailableError(err))
	assert.False(t, errors.IsUpstreamAuthError(err))
}
