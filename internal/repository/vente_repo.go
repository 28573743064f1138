package repository

import (
	"context"

	"mata/internal/model"

	"gorm.io/gorm"
)

type VenteRepository interface {
	// ListByDate returns the sales entered for a day (DD/MM/YYYY).
	ListByDate(ctx context.Context, date string) ([]model.Vente, error)
	CreateBatch(ctx context.Context, ventes []model.Vente) error
}

type venteRepo struct{ db *gorm.DB }

func NewVenteRepository(db *gorm.DB) VenteRepository { return &venteRepo{db: db} }

func (r *venteRepo) ListByDate(ctx context.Context, date string) ([]model.Vente, error) {
	var ventes []model.Vente
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("point_de_vente ASC, created_at ASC").
		Find(&ventes).Error
	return ventes, err
}

func (r *venteRepo) CreateBatch(ctx context.Context, ventes []model.Vente) error {
	if len(ventes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(ventes, 200).Error
}
