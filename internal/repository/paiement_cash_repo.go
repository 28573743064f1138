package repository

import (
	"context"

	"mata/internal/model"
	"mata/internal/reconciliation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaiementCashRepository interface {
	// Aggregated sums payments per day and raw reference, days in ascending order.
	Aggregated(ctx context.Context) ([]reconciliation.CashDay, error)
	CreateBatch(ctx context.Context, paiements []model.PaiementCash) error
}

type paiementCashRepo struct{ db *gorm.DB }

func NewPaiementCashRepository(db *gorm.DB) PaiementCashRepository {
	return &paiementCashRepo{db: db}
}

type cashTotalRow struct {
	Date      string
	Reference string
	Total     decimal.Decimal
}

func (r *paiementCashRepo) Aggregated(ctx context.Context) ([]reconciliation.CashDay, error) {
	var rows []cashTotalRow
	err := r.db.WithContext(ctx).
		Model(&model.PaiementCash{}).
		Select("date, reference, SUM(montant) AS total").
		Group("date, reference").
		Order("date ASC, reference ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	days := []reconciliation.CashDay{}
	for _, row := range rows {
		if n := len(days); n == 0 || days[n-1].Date != row.Date {
			days = append(days, reconciliation.CashDay{Date: row.Date})
		}
		d := &days[len(days)-1]
		d.Points = append(d.Points, reconciliation.CashPoint{Point: row.Reference, Total: row.Total})
	}
	return days, nil
}

func (r *paiementCashRepo) CreateBatch(ctx context.Context, paiements []model.PaiementCash) error {
	if len(paiements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(paiements, 200).Error
}
