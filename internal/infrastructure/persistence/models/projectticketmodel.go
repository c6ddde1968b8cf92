package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProjectTicketModel struct {
	ID           uint   `gorm:"primaryKey"`
	TicketNumber string `gorm:"uniqueIndex;size:50;not null"`
	ProjectID    *int64 `gorm:"index"`
	CompanyID    uint   `gorm:"not null;index"`

	OldTicket        *string `gorm:"size:50;index"`
	IsContinueUpdate bool    `gorm:"not null;default:true;index"`

	ReplaceByDate time.Time `gorm:"not null;index"`
	LegalDate     *time.Time
	Expires       *time.Time `gorm:"index"`
	OriginalDate  *time.Time

	Place               *string `gorm:"size:200"`
	Street              *string `gorm:"size:200"`
	LocationDescription *string `gorm:"type:text"`
	FormattedAddress    *string `gorm:"size:500"`
	WorkArea            datatypes.JSON

	DoneFor *string `gorm:"size:200"`
	Type    *string `gorm:"size:100"`

	StFromAddress *string `gorm:"size:50"`
	StToAddress   *string `gorm:"size:50"`
	Cross1        *string `gorm:"size:200"`
	Cross2        *string `gorm:"size:200"`
	County        *string `gorm:"size:100"`
	State         *string `gorm:"size:50"`
	Zip           *string `gorm:"size:20"`

	Name  *string `gorm:"size:200"`
	Phone *string `gorm:"size:50"`
	Email *string `gorm:"size:200"`

	Revision *string `gorm:"size:20"`

	Responses datatypes.JSON

	RawData       datatypes.JSON
	DataUpdatedAt *time.Time

	CreatedAt int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt int64 `gorm:"autoUpdateTime:milli;not null"`
}

func (ProjectTicketModel) TableName() string {
	return "project_tickets"
}
