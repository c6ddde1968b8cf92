package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/mappers"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/models"
	"github.com/diglink-inc/diglink/internal/shared/db"
	"github.com/diglink-inc/diglink/internal/shared/errors"
)

// descriptiveColumns are the columns a data refresh is allowed to touch.
// Project assignment and lineage flags are owned by the orphan linker and
// must never be overwritten by a sync pass.
var descriptiveColumns = []string{
	"place", "street", "location_description", "formatted_address", "work_area",
	"done_for", "type",
	"st_from_address", "st_to_address", "cross1", "cross2",
	"county", "state", "zip",
	"name", "phone", "email",
	"revision", "expires", "original_date",
	"raw_data", "data_updated_at",
}

type ProjectTicketRepository struct {
	db     *gorm.DB
	mapper mappers.ProjectTicketMapper
}

func NewProjectTicketRepository(db *gorm.DB) *ProjectTicketRepository {
	return &ProjectTicketRepository{
		db:     db,
		mapper: mappers.NewProjectTicketMapper(),
	}
}

func (r *ProjectTicketRepository) FindByNumber(ctx context.Context, number string) (*ticket.Record, error) {
	var model models.ProjectTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("ticket_number = ?", number).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("ticket not found")
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *ProjectTicketRepository) Insert(ctx context.Context, rec *ticket.Record) error {
	model := r.mapper.ToModel(rec)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	rec.ID = model.ID
	return nil
}

// UpdateDescriptive refreshes the descriptive columns of an existing record
// from a freshly transformed one. The explicit column list makes nil-out
// updates take effect and keeps linker-owned fields untouched.
func (r *ProjectTicketRepository) UpdateDescriptive(ctx context.Context, id uint, fresh *ticket.Record) error {
	model := r.mapper.ToModel(fresh)
	tx := db.GetTxFromContext(ctx, r.db)

	cols := descriptiveColumns
	if len(fresh.Responses) > 0 {
		cols = append(append([]string{}, cols...), "responses")
	}

	result := tx.
		Model(&models.ProjectTicketModel{}).
		Where("id = ?", id).
		Select(cols).
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket: %w", result.Error)
	}
	return nil
}

// FindOrphans returns records with a predecessor reference but no project.
func (r *ProjectTicketRepository) FindOrphans(ctx context.Context) ([]*ticket.Record, error) {
	var rows []models.ProjectTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("project_id IS NULL AND old_ticket IS NOT NULL AND old_ticket != ''").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find orphan tickets: %w", err)
	}
	return r.toDomainSlice(rows), nil
}

// FindAssignedByNumber looks up a same-company predecessor that already has a
// project. Returns not-found when the predecessor is missing or unassigned.
func (r *ProjectTicketRepository) FindAssignedByNumber(ctx context.Context, companyID uint, number string) (*ticket.Record, error) {
	var model models.ProjectTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("ticket_number = ? AND company_id = ? AND project_id IS NOT NULL", number, companyID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("assigned predecessor not found")
		}
		return nil, fmt.Errorf("failed to find predecessor ticket: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *ProjectTicketRepository) AssignProject(ctx context.Context, id uint, projectID int64) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.ProjectTicketModel{}).
		Where("id = ?", id).
		Update("project_id", projectID)
	if result.Error != nil {
		return fmt.Errorf("failed to assign project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("ticket not found")
	}
	return nil
}

func (r *ProjectTicketRepository) SetContinueUpdate(ctx context.Context, id uint, value bool) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.ProjectTicketModel{}).
		Where("id = ?", id).
		Update("is_continue_update", value)
	if result.Error != nil {
		return fmt.Errorf("failed to set continue-update flag: %w", result.Error)
	}
	return nil
}

// FindUpdatableCandidates returns continuing tickets whose replace-by date
// falls inside the window and which are not yet marked updatable.
func (r *ProjectTicketRepository) FindUpdatableCandidates(ctx context.Context, from, to time.Time) ([]*ticket.Record, error) {
	var rows []models.ProjectTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	marked := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.UpdatableTicketModel{}).
		Select("ticket_number")

	if err := tx.
		Where("is_continue_update = ? AND replace_by_date BETWEEN ? AND ?", true, from, to).
		Where("ticket_number NOT IN (?)", marked).
		Order("replace_by_date").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find updatable candidates: %w", err)
	}
	return r.toDomainSlice(rows), nil
}

// FindUnexpiredByCompany returns a company's tickets that have not expired,
// for the response refresh pass.
func (r *ProjectTicketRepository) FindUnexpiredByCompany(ctx context.Context, companyID uint, now time.Time) ([]*ticket.Record, error) {
	var rows []models.ProjectTicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("company_id = ? AND (expires IS NULL OR expires >= ?)", companyID, now).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find unexpired tickets: %w", err)
	}
	return r.toDomainSlice(rows), nil
}

func (r *ProjectTicketRepository) UpdateResponses(ctx context.Context, id uint, responses json.RawMessage, now time.Time) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.ProjectTicketModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"responses":       datatypes.JSON(responses),
			"data_updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update responses: %w", result.Error)
	}
	return nil
}

func (r *ProjectTicketRepository) toDomainSlice(rows []models.ProjectTicketModel) []*ticket.Record {
	records := make([]*ticket.Record, 0, len(rows))
	for i := range rows {
		records = append(records, r.mapper.ToDomain(&rows[i]))
	}
	return records
}
