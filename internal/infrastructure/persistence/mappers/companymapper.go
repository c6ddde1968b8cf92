// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/infrastructure/persistence/models"
)

// CompanyMapper handles the conversion between Company domain entities and
// persistence models.
type CompanyMapper interface {
	ToDomain(model *models.CompanyModel) *company.Company
	ToModel(c *company.Company) *models.CompanyModel
}

type CompanyMapperImpl struct{}

func NewCompanyMapper() CompanyMapper {
	return &CompanyMapperImpl{}
}

func (m *CompanyMapperImpl) ToDomain(model *models.CompanyModel) *company.Company {
	return &company.Company{
		ID:                model.ID,
		Name:              model.Name,
		Username:          model.BluestakesUsername,
		EncryptedPassword: model.BluestakesPassword,
		Token:             model.BluestakesToken,
		TokenExpiresAt:    model.BluestakesExpiresAt,
	}
}

func (m *CompanyMapperImpl) ToModel(c *company.Company) *models.CompanyModel {
	return &models.CompanyModel{
		ID:                  c.ID,
		Name:                c.Name,
		BluestakesUsername:  c.Username,
		BluestakesPassword:  c.EncryptedPassword,
		BluestakesToken:     c.Token,
		BluestakesExpiresAt: c.TokenExpiresAt,
	}
}
