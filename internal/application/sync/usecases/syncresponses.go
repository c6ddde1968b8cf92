package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

type SyncResponsesResult struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// SyncResponsesUseCase refreshes the utility-response JSON of one company's
// unexpired tickets. Responses live on a separate upstream endpoint, so this
// runs as its own pass after the main sync.
type SyncResponsesUseCase struct {
	ticketRepo TicketRepository
	api        TicketAPI
	delay      time.Duration
	logger     logger.Interface

	// now is swappable in tests.
	now func() time.Time
}

func NewSyncResponsesUseCase(
	ticketRepo TicketRepository,
	api TicketAPI,
	delay time.Duration,
	logger logger.Interface,
) *SyncResponsesUseCase {
	return &SyncResponsesUseCase{
		ticketRepo: ticketRepo,
		api:        api,
		delay:      delay,
		logger:     logger,
		now:        time.Now,
	}
}

func (uc *SyncResponsesUseCase) Execute(ctx context.Context, creds company.Credentials) (*SyncResponsesResult, error) {
	now := uc.now()
	tickets, err := uc.ticketRepo.FindUnexpiredByCompany(ctx, creds.CompanyID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load unexpired tickets: %w", err)
	}

	result := &SyncResponsesResult{}
	for _, rec := range tickets {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		responses, err := uc.api.TicketResponses(ctx, creds, rec.TicketNumber)
		if err != nil {
			result.Failed++
			uc.logger.Warnw("failed to fetch ticket responses",
				"ticket_number", rec.TicketNumber,
				"error", err,
			)
			continue
		}

		if len(responses) > 0 {
			if err := uc.ticketRepo.UpdateResponses(ctx, rec.ID, responses, now); err != nil {
				result.Failed++
				uc.logger.Errorw("failed to store ticket responses",
					"ticket_number", rec.TicketNumber,
					"error", err,
				)
				continue
			}
			result.Synced++
		}

		if err := sleep(ctx, uc.delay); err != nil {
			return result, err
		}
	}

	return result, nil
}
