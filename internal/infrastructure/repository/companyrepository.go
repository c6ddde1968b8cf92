// Package repository contains the GORM-backed persistence adapters.
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/mappers"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/models"
	"github.com/diglink-inc/diglink/internal/shared/db"
	"github.com/diglink-inc/diglink/internal/shared/errors"
)

type CompanyRepository struct {
	db     *gorm.DB
	mapper mappers.CompanyMapper
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{
		db:     db,
		mapper: mappers.NewCompanyMapper(),
	}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id uint) (*company.Company, error) {
	var model models.CompanyModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("company not found")
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

// ListSyncEligible returns the companies holding both a BlueStakes username
// and a stored password.
func (r *CompanyRepository) ListSyncEligible(ctx context.Context) ([]*company.Company, error) {
	var rows []models.CompanyModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("bluestakes_username != '' AND bluestakes_password != ''").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sync-eligible companies: %w", err)
	}

	companies := make([]*company.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, r.mapper.ToDomain(&rows[i]))
	}
	return companies, nil
}

// StoreToken persists a freshly issued token and its expiry on the company
// row. Token columns are written only here and in the clear operations.
func (r *CompanyRepository) StoreToken(ctx context.Context, companyID uint, token string, expiresAt time.Time) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.CompanyModel{}).
		Where("id = ?", companyID).
		Updates(map[string]interface{}{
			"bluestakes_token":      token,
			"bluestakes_expires_at": expiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to store token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("company not found")
	}
	return nil
}

// ClearToken nulls the token columns for one company. It reports whether a
// token was actually present.
func (r *CompanyRepository) ClearToken(ctx context.Context, companyID uint) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.CompanyModel{}).
		Where("id = ? AND bluestakes_token IS NOT NULL", companyID).
		Updates(map[string]interface{}{
			"bluestakes_token":      nil,
			"bluestakes_expires_at": nil,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to clear token: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ClearExpiredTokens nulls every token whose expiry is at or before the given
// instant and returns the number of rows swept.
func (r *CompanyRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.CompanyModel{}).
		Where("bluestakes_token IS NOT NULL AND bluestakes_expires_at <= ?", now).
		Updates(map[string]interface{}{
			"bluestakes_token":      nil,
			"bluestakes_expires_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListTokenStates returns the expiry of every cached token for statistics.
func (r *CompanyRepository) ListTokenStates(ctx context.Context) ([]company.TokenState, error) {
	var rows []models.CompanyModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Select("id", "bluestakes_expires_at").
		Where("bluestakes_token IS NOT NULL").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list token states: %w", err)
	}

	states := make([]company.TokenState, 0, len(rows))
	for i := range rows {
		states = append(states, company.TokenState{
			CompanyID: rows[i].ID,
			ExpiresAt: rows[i].BluestakesExpiresAt,
		})
	}
	return states, nil
}
