package mappers

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/models"
)

// ProjectTicketMapper handles the conversion between ticket records and
// persistence models.
type ProjectTicketMapper interface {
	ToDomain(model *models.ProjectTicketModel) *ticket.Record
	ToModel(rec *ticket.Record) *models.ProjectTicketModel
}

type ProjectTicketMapperImpl struct{}

func NewProjectTicketMapper() ProjectTicketMapper {
	return &ProjectTicketMapperImpl{}
}

func (m *ProjectTicketMapperImpl) ToDomain(model *models.ProjectTicketModel) *ticket.Record {
	return &ticket.Record{
		ID:           model.ID,
		TicketNumber: model.TicketNumber,
		ProjectID:    model.ProjectID,
		CompanyID:    model.CompanyID,

		OldTicket:        model.OldTicket,
		IsContinueUpdate: model.IsContinueUpdate,

		ReplaceByDate: model.ReplaceByDate,
		LegalDate:     model.LegalDate,
		Expires:       model.Expires,
		OriginalDate:  model.OriginalDate,

		Place:               model.Place,
		Street:              model.Street,
		LocationDescription: model.LocationDescription,
		FormattedAddress:    model.FormattedAddress,
		WorkArea:            rawJSON(model.WorkArea),

		DoneFor: model.DoneFor,
		Type:    model.Type,

		StFromAddress: model.StFromAddress,
		StToAddress:   model.StToAddress,
		Cross1:        model.Cross1,
		Cross2:        model.Cross2,
		County:        model.County,
		State:         model.State,
		Zip:           model.Zip,

		Name:  model.Name,
		Phone: model.Phone,
		Email: model.Email,

		Revision: model.Revision,

		Responses: rawJSON(model.Responses),

		RawData:       rawJSON(model.RawData),
		DataUpdatedAt: model.DataUpdatedAt,
	}
}

func (m *ProjectTicketMapperImpl) ToModel(rec *ticket.Record) *models.ProjectTicketModel {
	return &models.ProjectTicketModel{
		ID:           rec.ID,
		TicketNumber: rec.TicketNumber,
		ProjectID:    rec.ProjectID,
		CompanyID:    rec.CompanyID,

		OldTicket:        rec.OldTicket,
		IsContinueUpdate: rec.IsContinueUpdate,

		ReplaceByDate: rec.ReplaceByDate,
		LegalDate:     rec.LegalDate,
		Expires:       rec.Expires,
		OriginalDate:  rec.OriginalDate,

		Place:               rec.Place,
		Street:              rec.Street,
		LocationDescription: rec.LocationDescription,
		FormattedAddress:    rec.FormattedAddress,
		WorkArea:            jsonColumn(rec.WorkArea),

		DoneFor: rec.DoneFor,
		Type:    rec.Type,

		StFromAddress: rec.StFromAddress,
		StToAddress:   rec.StToAddress,
		Cross1:        rec.Cross1,
		Cross2:        rec.Cross2,
		County:        rec.County,
		State:         rec.State,
		Zip:           rec.Zip,

		Name:  rec.Name,
		Phone: rec.Phone,
		Email: rec.Email,

		Revision: rec.Revision,

		Responses: jsonColumn(rec.Responses),

		RawData:       jsonColumn(rec.RawData),
		DataUpdatedAt: rec.DataUpdatedAt,
	}
}

func rawJSON(col datatypes.JSON) json.RawMessage {
	if len(col) == 0 {
		return nil
	}
	return json.RawMessage(col)
}

func jsonColumn(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}
