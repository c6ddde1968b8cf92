package mappers

import (
	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/models"
)

// UpdatableTicketMapper handles the conversion between updatable-ticket marks
// and persistence models.
type UpdatableTicketMapper interface {
	ToDomain(model *models.UpdatableTicketModel) *ticket.UpdatableMark
	ToModel(mark *ticket.UpdatableMark) *models.UpdatableTicketModel
}

type UpdatableTicketMapperImpl struct{}

func NewUpdatableTicketMapper() UpdatableTicketMapper {
	return &UpdatableTicketMapperImpl{}
}

func (m *UpdatableTicketMapperImpl) ToDomain(model *models.UpdatableTicketModel) *ticket.UpdatableMark {
	return &ticket.UpdatableMark{
		ID:            model.ID,
		TicketNumber:  model.TicketNumber,
		CompanyID:     model.CompanyID,
		ReplaceByDate: model.ReplaceByDate,
	}
}

func (m *UpdatableTicketMapperImpl) ToModel(mark *ticket.UpdatableMark) *models.UpdatableTicketModel {
	return &models.UpdatableTicketModel{
		ID:            mark.ID,
		TicketNumber:  mark.TicketNumber,
		CompanyID:     mark.CompanyID,
		ReplaceByDate: mark.ReplaceByDate,
	}
}
