package repository

import (
	"context"
	"errors"

	"mata/internal/model"

	"gorm.io/gorm"
)

type ReconciliationRepository interface {
	FindByDate(ctx context.Context, date string) (*model.Reconciliation, error)
	// Save upserts the record of rec.Date and returns the new version.
	// When expectedVersion is non-nil it must match the stored version (0 for
	// a record that does not exist yet), otherwise ErrVersionConflict.
	Save(ctx context.Context, rec *model.Reconciliation, expectedVersion *int) (int, error)
}

type reconciliationRepo struct{ db *gorm.DB }

func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepo{db: db}
}

func (r *reconciliationRepo) FindByDate(ctx context.Context, date string) (*model.Reconciliation, error) {
	var rec model.Reconciliation
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *reconciliationRepo) Save(ctx context.Context, rec *model.Reconciliation, expectedVersion *int) (int, error) {
	var version int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Reconciliation
		err := tx.Where("date = ?", rec.Date).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if expectedVersion != nil && *expectedVersion != 0 {
				return ErrVersionConflict
			}
			rec.Version = 1
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			version = 1
			return nil
		case err != nil:
			return err
		}

		q := tx.Model(&model.Reconciliation{}).Where("date = ?", rec.Date)
		if expectedVersion != nil {
			// the version predicate keeps the check atomic with the write
			q = q.Where("version = ?", *expectedVersion)
		}
		res := q.Updates(map[string]any{
			"data":              rec.Data,
			"comments":          rec.Comments,
			"cash_payment_data": rec.CashPaymentData,
			"version":           gorm.Expr("version + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return tx.Model(&model.Reconciliation{}).
			Where("date = ?", rec.Date).
			Select("version").
			Scan(&version).Error
	})
	if err != nil {
		return 0, err
	}
	rec.Version = version
	return version, nil
}
