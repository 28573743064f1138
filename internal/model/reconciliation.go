package model

import (
	"time"

	"github.com/google/uuid"
)

// Reconciliation is the persisted snapshot of a day's reconciliation.
// Data, Comments and CashPaymentData hold JSON documents; a save replaces the
// three of them at once. Version increments on every save and backs the
// optional stale-write check.
type Reconciliation struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date            string    `gorm:"type:varchar(10);not null;uniqueIndex"` // DD/MM/YYYY
	Data            string    `gorm:"type:text;not null"`
	Comments        string    `gorm:"type:text;not null"`
	CashPaymentData string    `gorm:"type:text;not null"`
	Version         int       `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
