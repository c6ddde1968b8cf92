package usecases

import (
	"context"
	"fmt"

	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

type LinkOrphansResult struct {
	Examined          int `json:"examined"`
	Linked            int `json:"linked"`
	OldTicketsUpdated int `json:"old_tickets_updated"`
}

// LinkOrphansUseCase re-parents tickets that reference a predecessor but have
// no project yet: when the same-company predecessor already carries a
// project, the orphan inherits it and the predecessor stops being the ticket
// to renew.
//
// The pass is idempotent: a linked ticket leaves the orphan set, and a
// predecessor chain with no assigned project simply stays unlinked until a
// later run finds one.
type LinkOrphansUseCase struct {
	ticketRepo TicketRepository
	txManager  TransactionManager
	logger     logger.Interface
}

func NewLinkOrphansUseCase(ticketRepo TicketRepository, txManager TransactionManager, logger logger.Interface) *LinkOrphansUseCase {
	return &LinkOrphansUseCase{
		ticketRepo: ticketRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (uc *LinkOrphansUseCase) Execute(ctx context.Context) (*LinkOrphansResult, error) {
	orphans, err := uc.ticketRepo.FindOrphans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orphan tickets: %w", err)
	}

	result := &LinkOrphansResult{Examined: len(orphans)}
	for _, orphan := range orphans {
		if orphan.OldTicket == nil {
			continue
		}

		pred, err := uc.ticketRepo.FindAssignedByNumber(ctx, orphan.CompanyID, *orphan.OldTicket)
		if err != nil {
			if errors.IsNotFoundError(err) {
				continue
			}
			uc.logger.Errorw("failed to look up predecessor",
				"ticket_number", orphan.TicketNumber,
				"old_ticket", *orphan.OldTicket,
				"error", err,
			)
			continue
		}

		// Assign and retire together: the successor carrying the project
		// while the predecessor still claims the lineage is not a state
		// other passes should ever observe.
		err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			if err := uc.ticketRepo.AssignProject(txCtx, orphan.ID, *pred.ProjectID); err != nil {
				return err
			}
			return uc.ticketRepo.SetContinueUpdate(txCtx, pred.ID, false)
		})
		if err != nil {
			uc.logger.Errorw("failed to link orphan ticket",
				"ticket_number", orphan.TicketNumber,
				"old_ticket", *orphan.OldTicket,
				"error", err,
			)
			continue
		}

		result.Linked++
		result.OldTicketsUpdated++
		uc.logger.Infow("linked orphan ticket",
			"ticket_number", orphan.TicketNumber,
			"old_ticket", *orphan.OldTicket,
			"project_id", *pred.ProjectID,
		)
	}

	return result, nil
}
