package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/mappers"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/models"
	"github.com/diglink-inc/diglink/internal/shared/db"
)

type UpdatableTicketRepository struct {
	db     *gorm.DB
	mapper mappers.UpdatableTicketMapper
}

func NewUpdatableTicketRepository(db *gorm.DB) *UpdatableTicketRepository {
	return &UpdatableTicketRepository{
		db:     db,
		mapper: mappers.NewUpdatableTicketMapper(),
	}
}

func (r *UpdatableTicketRepository) Exists(ctx context.Context, ticketNumber string) (bool, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Model(&models.UpdatableTicketModel{}).
		Where("ticket_number = ?", ticketNumber).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check updatable mark: %w", err)
	}
	return count > 0, nil
}

func (r *UpdatableTicketRepository) Insert(ctx context.Context, mark *ticket.UpdatableMark) error {
	model := r.mapper.ToModel(mark)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert updatable mark: %w", err)
	}
	mark.ID = model.ID
	return nil
}
