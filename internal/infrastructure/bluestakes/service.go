package bluestakes

import (
	"context"
	"encoding/json"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

// Service is the authenticated BlueStakes API surface used by the sync
// pipeline. Every call obtains a token from the cache and retries exactly
// once on an upstream 401/403 after invalidating the cached token. A second
// auth failure, and any timeout, propagates without further retries.
type Service struct {
	client *Client
	tokens *TokenCache
	logger logger.Interface
}

func NewService(client *Client, tokens *TokenCache, log logger.Interface) *Service {
	return &Service{
		client: client,
		tokens: tokens,
		logger: log,
	}
}

// Tokens exposes the underlying cache for the token management surface.
func (s *Service) Tokens() *TokenCache {
	return s.tokens
}

// SearchPage fetches one page of raw ticket payloads.
func (s *Service) SearchPage(ctx context.Context, creds company.Credentials, q ticket.SearchQuery) ([]json.RawMessage, error) {
	var page []json.RawMessage
	err := s.authedDo(ctx, creds, func(token string) error {
		var err error
		page, err = s.client.Search(ctx, token, q)
		return err
	})
	return page, err
}

// TicketDetails fetches the full payload of one ticket; found is false on an
// upstream 404.
func (s *Service) TicketDetails(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, bool, error) {
	var (
		payload json.RawMessage
		found   bool
	)
	err := s.authedDo(ctx, creds, func(token string) error {
		var err error
		payload, found, err = s.client.GetTicket(ctx, token, number)
		return err
	})
	return payload, found, err
}

// UpdateAvailable reports whether the upstream currently offers the update
// action for a ticket. Unknown tickets report false.
func (s *Service) UpdateAvailable(ctx context.Context, creds company.Credentials, number string) (bool, error) {
	var updatable bool
	err := s.authedDo(ctx, creds, func(token string) error {
		fns, err := s.client.GetSecondaryFunctions(ctx, token, number)
		if err != nil {
			return err
		}
		updatable = fns.Update
		return nil
	})
	return updatable, err
}

// TicketResponses fetches the utility responses recorded against a ticket.
func (s *Service) TicketResponses(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, error) {
	var responses json.RawMessage
	err := s.authedDo(ctx, creds, func(token string) error {
		var err error
		responses, err = s.client.GetResponses(ctx, token, number)
		return err
	})
	return responses, err
}

// authedDo runs fn with a cached token, refreshing and retrying exactly once
// when the upstream rejects it. Bounding the retry keeps worst-case latency
// predictable against a third-party system.
func (s *Service) authedDo(ctx context.Context, creds company.Credentials, fn func(token string) error) error {
	token, err := s.tokens.GetOrRefresh(ctx, creds)
	if err != nil {
		return err
	}

	err = fn(token)
	if err == nil || !errors.IsUpstreamAuthError(err) {
		return err
	}

	s.logger.Warnw("bluestakes rejected token, refreshing once",
		"company_id", creds.CompanyID,
	)
	if _, invErr := s.tokens.Invalidate(ctx, creds.CompanyID); invErr != nil {
		return invErr
	}

	token, err = s.tokens.GetOrRefresh(ctx, creds)
	if err != nil {
		return err
	}
	return fn(token)
}
