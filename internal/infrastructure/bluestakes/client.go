// Package bluestakes implements the client stack for the BlueStakes ticketing
// API: a raw HTTP client, a per-company token cache, and an authenticated
// service that bounds re-authentication to a single retry.
package bluestakes

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/shared/config"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

const (
	loginPath  = "/login-json"
	searchPath = "/tickets/search"
	ticketPath = "/tickets/%s"

	// Maximum response body size (8MB; search pages carry full payloads)
	maxResponseSize = 8 << 20
)

// SecondaryFunctions is the upstream's report of what actions a ticket
// currently supports.
type SecondaryFunctions struct {
	Update bool `json:"update"`
}

// Client is the raw BlueStakes HTTP client. It performs no token management:
// every authenticated call takes an explicit bearer token. Separate HTTP
// clients bound each endpoint class with its own timeout.
type Client struct {
	baseURL      string
	loginClient  *http.Client
	searchClient *http.Client
	detailClient *http.Client
	logger       logger.Interface
}

// NewClient creates a raw BlueStakes client from config.
func NewClient(cfg *config.BlueStakesConfig, log logger.Interface) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		loginClient:  &http.Client{Timeout: cfg.LoginTimeout()},
		searchClient: &http.Client{Timeout: cfg.SearchTimeout()},
		detailClient: &http.Client{Timeout: cfg.DetailTimeout()},
		logger:       log,
	}
}

// LoginRaw authenticates against the upstream and returns a bearer token.
// No caching happens here; TokenCache owns token lifecycle.
func (c *Client) LoginRaw(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.loginClient.Do(req)
	if err != nil {
		return "", classifyTransportError("login", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", errors.NewUpstreamAuthError("bluestakes rejected credentials",
			fmt.Sprintf("status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewUpstreamUnavailableError("bluestakes login failed",
			fmt.Sprintf("status %d", resp.StatusCode))
	}

	var payload struct {
		Authorization string `json:"Authorization"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}

	token := strings.TrimSpace(strings.TrimPrefix(payload.Authorization, "Bearer"))
	if token == "" {
		return "", errors.NewUpstreamAuthError("bluestakes login returned no token")
	}
	return token, nil
}

// Search fetches one page of raw ticket payloads for the given window.
func (c *Client) Search(ctx context.Context, token string, q ticket.SearchQuery) ([]json.RawMessage, error) {
	params := url.Values{}
	for k, v := range q.Values() {
		params.Set(k, v)
	}
	endpoint := c.baseURL + searchPath + "?" + params.Encode()

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.getJSON(ctx, c.searchClient, "search", token, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// GetTicket fetches the full payload of one ticket. A 404 reports found=false
// without an error.
func (c *Client) GetTicket(ctx context.Context, token, number string) (json.RawMessage, bool, error) {
	endpoint := c.baseURL + fmt.Sprintf(ticketPath, url.PathEscape(number))

	var payload json.RawMessage
	err := c.getJSON(ctx, c.detailClient, "ticket detail", token, endpoint, &payload)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// GetSecondaryFunctions reports the upstream actions available for a ticket.
// A 404 means no actions, not an error.
func (c *Client) GetSecondaryFunctions(ctx context.Context, token, number string) (*SecondaryFunctions, error) {
	endpoint := c.baseURL + fmt.Sprintf(ticketPath, url.PathEscape(number)) + "/secondary-functions"

	var payload SecondaryFunctions
	if err := c.getJSON(ctx, c.detailClient, "secondary functions", token, endpoint, &payload); err != nil {
		if errors.IsNotFoundError(err) {
			return &SecondaryFunctions{Update: false}, nil
		}
		return nil, err
	}
	return &payload, nil
}

// GetResponses fetches the utility responses recorded against a ticket.
func (c *Client) GetResponses(ctx context.Context, token, number string) (json.RawMessage, error) {
	endpoint := c.baseURL + fmt.Sprintf(ticketPath, url.PathEscape(number)) + "/responses"

	var payload struct {
		Responses json.RawMessage `json:"responses"`
	}
	if err := c.getJSON(ctx, c.detailClient, "responses", token, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Responses, nil
}

// getJSON issues an authenticated GET and decodes the body. Status codes map
// onto the error taxonomy: 401/403 to upstream-auth (the Service retry hook),
// 404 to not-found, timeouts to upstream-unavailable.
func (c *Client) getJSON(ctx context.Context, client *http.Client, op, token, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.NewUpstreamAuthError("bluestakes rejected token",
			fmt.Sprintf("%s: status %d", op, resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError("bluestakes resource not found", op)
	case resp.StatusCode != http.StatusOK:
		return errors.NewUpstreamUnavailableError("bluestakes request failed",
			fmt.Sprintf("%s: status %d", op, resp.StatusCode))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// classifyTransportError maps transport failures onto the error taxonomy.
// Timeouts get their own message so callers can tell a slow upstream from a
// rejecting one; they are never retried.
func classifyTransportError(op string, err error) error {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewUpstreamUnavailableError("bluestakes request timed out", op)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewUpstreamUnavailableError("bluestakes request timed out", op)
	}
	return errors.NewUpstreamUnavailableError("bluestakes unreachable",
		fmt.Sprintf("%s: %v", op, err))
}
