// Package updater calls the external browser-automation service that
// performs the actual BlueStakes ticket renewal.
package updater

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diglink-inc/diglink/internal/application/jobs"
	"github.com/diglink-inc/diglink/internal/shared/config"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

const (
	updatePath = "/update-ticket"

	// Maximum response body size (1MB)
	maxUpdateResponseSize = 1 << 20
)

// HTTPUpdater implements jobs.TicketUpdater against the automation service's
// HTTP API. The service drives a real browser session, so calls are slow;
// the bounded job gate upstream keeps them serialized.
type HTTPUpdater struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Interface
}

func NewHTTPUpdater(cfg *config.UpdaterConfig, log logger.Interface) *HTTPUpdater {
	return &HTTPUpdater{
		baseURL:    strings.TrimRight(cfg.ServiceURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     log,
	}
}

var _ jobs.TicketUpdater = (*HTTPUpdater)(nil)

// UpdateTicket asks the automation service to renew one ticket. The service
// reports success in-band; transport and non-200 failures surface as errors.
func (u *HTTPUpdater) UpdateTicket(ctx context.Context, ticketNumber, username, password string) (*jobs.Result, error) {
	body, err := json.Marshal(map[string]string{
		"ticket_number": ticketNumber,
		"username":      username,
		"password":      password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode update request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+updatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("automation service unreachable", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewUpstreamUnavailableError("automation service request failed",
			fmt.Sprintf("status %d", resp.StatusCode))
	}

	var payload struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUpdateResponseSize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode update response: %w", err)
	}

	return &jobs.Result{
		Success:   payload.Success,
		Message:   payload.Message,
		Details:   payload.Details,
		Timestamp: time.Now().UTC(),
	}, nil
}
