package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vente is a sale line entered through the point-of-sale workflow.
// Date uses the display format DD/MM/YYYY, as entered.
type Vente struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Date         string          `gorm:"type:varchar(10);not null;index"`
	PointDeVente string          `gorm:"type:varchar(80);not null;index"`
	Produit      string          `gorm:"type:varchar(120);not null"`
	PrixUnit     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Nombre       decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Montant      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt    time.Time
}
