package models

import "time"

type UpdatableTicketModel struct {
	ID            uint      `gorm:"primaryKey"`
	TicketNumber  string    `gorm:"uniqueIndex;size:50;not null"`
	CompanyID     uint      `gorm:"not null;index"`
	ReplaceByDate time.Time `gorm:"not null;index"`
	CreatedAt     int64     `gorm:"autoCreateTime:milli;not null"`
}

func (UpdatableTicketModel) TableName() string {
	return "updatable_tickets"
}
