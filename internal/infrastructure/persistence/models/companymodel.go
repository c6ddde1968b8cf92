package models

import "time"

type CompanyModel struct {
	ID                  uint    `gorm:"primaryKey"`
	Name                string  `gorm:"size:200;not null"`
	BluestakesUsername  string  `gorm:"size:100;not null;default:''"`
	BluestakesPassword  string  `gorm:"size:500;not null;default:''"`
	BluestakesToken     *string `gorm:"size:1000"`
	BluestakesExpiresAt *time.Time
	CreatedAt           int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt           int64 `gorm:"autoUpdateTime:milli;not null"`

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

func (CompanyModel) TableName() string {
	return "companies"
}
