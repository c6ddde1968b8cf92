package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

// renewalWindow is how far ahead of replace_by_date a ticket becomes a
// renewal candidate.
const renewalWindow = 7 * 24 * time.Hour

type ScanUpdatableResult struct {
	Candidates  int `json:"candidates"`
	Marked      int `json:"marked"`
	APIFailures int `json:"api_failures"`
}

// ScanUpdatableUseCase finds continuing tickets whose renewal window has
// opened, asks the upstream whether the update action is actually offered,
// and appends a mark for each one that is. Marks are existence-checked so the
// scan can run repeatedly without duplicates.
type ScanUpdatableUseCase struct {
	ticketRepo    TicketRepository
	updatableRepo UpdatableTicketRepository
	api           TicketAPI
	logger        logger.Interface

	// now is swappable in tests.
	now func() time.Time
}

func NewScanUpdatableUseCase(
	ticketRepo TicketRepository,
	updatableRepo UpdatableTicketRepository,
	api TicketAPI,
	logger logger.Interface,
) *ScanUpdatableUseCase {
	return &ScanUpdatableUseCase{
		ticketRepo:    ticketRepo,
		updatableRepo: updatableRepo,
		api:           api,
		logger:        logger,
		now:           time.Now,
	}
}

// Execute scans for candidates using the given per-company credentials.
// Candidates belonging to a company without credentials are skipped.
func (uc *ScanUpdatableUseCase) Execute(ctx context.Context, credsByCompany map[uint]company.Credentials) (*ScanUpdatableResult, error) {
	now := uc.now()
	candidates, err := uc.ticketRepo.FindUpdatableCandidates(ctx, now, now.Add(renewalWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to load updatable candidates: %w", err)
	}

	result := &ScanUpdatableResult{Candidates: len(candidates)}
	for _, cand := range candidates {
		creds, ok := credsByCompany[cand.CompanyID]
		if !ok {
			continue
		}

		// The candidate query excludes marked tickets, but the scan may
		// race a concurrent run; re-check before inserting.
		exists, err := uc.updatableRepo.Exists(ctx, cand.TicketNumber)
		if err != nil || exists {
			continue
		}

		updatable, err := uc.api.UpdateAvailable(ctx, creds, cand.TicketNumber)
		if err != nil {
			result.APIFailures++
			uc.logger.Warnw("failed to check update availability",
				"ticket_number", cand.TicketNumber,
				"error", err,
			)
			continue
		}
		if !updatable {
			continue
		}

		mark := &ticket.UpdatableMark{
			TicketNumber:  cand.TicketNumber,
			CompanyID:     cand.CompanyID,
			ReplaceByDate: cand.ReplaceByDate,
		}
		if err := uc.updatableRepo.Insert(ctx, mark); err != nil {
			uc.logger.Errorw("failed to mark ticket updatable",
				"ticket_number", cand.TicketNumber,
				"error", err,
			)
			continue
		}

		result.Marked++
		uc.logger.Infow("marked ticket updatable",
			"ticket_number", cand.TicketNumber,
			"replace_by_date", cand.ReplaceByDate,
		)
	}

	return result, nil
}
