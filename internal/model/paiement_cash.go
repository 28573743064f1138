package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaiementCash is an electronically recorded cash payment imported from the
// payment gateway. Reference is the raw gateway identifier (e.g. "G_MBA"),
// normalized only when matched to a point of sale.
type PaiementCash struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Date      string          `gorm:"type:varchar(10);not null;index"` // YYYY-MM-DD
	Reference string          `gorm:"type:varchar(80);not null"`
	Montant   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time
}

// TableName overrides GORM's default pluralization (paiement_cashes → paiements_cash).
func (PaiementCash) TableName() string { return "paiements_cash" }
