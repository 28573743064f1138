package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mata/internal/dto"
	"mata/internal/model"
	"mata/internal/reconciliation"
	"mata/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mocks/mock_cash_source.go -package=mocks mata/internal/service CashSource

// CashSource publishes aggregated cash payments: one entry per day (YYYY-MM-DD)
// with the raw reference totals of that day.
type CashSource interface {
	Aggregated(ctx context.Context) ([]reconciliation.CashDay, error)
}

type CashService interface {
	Aggregated(ctx context.Context) ([]reconciliation.CashDay, error)
	// AggregateForDate returns the cash total per normalized point of sale.
	AggregateForDate(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error)
	Import(ctx context.Context, req dto.ImportCashPaymentsRequest) (*dto.ImportCashPaymentsResponse, error)
}

type cashService struct {
	repo   repository.PaiementCashRepository
	remote CashSource // nil when no payments API is configured
}

// NewCashService reads from remote when set and falls back to the local
// paiements_cash table when remote fails.
func NewCashService(repo repository.PaiementCashRepository, remote CashSource) CashService {
	return &cashService{repo: repo, remote: remote}
}

func (s *cashService) Aggregated(ctx context.Context) ([]reconciliation.CashDay, error) {
	if s.remote != nil {
		days, err := s.remote.Aggregated(ctx)
		if err == nil {
			return days, nil
		}
		log.Warn().Err(err).Msg("payments api unavailable, using local cash payments")
	}
	return s.repo.Aggregated(ctx)
}

func (s *cashService) AggregateForDate(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	days, err := s.Aggregated(ctx)
	if err != nil {
		return nil, err
	}
	return reconciliation.MatchCash(days, date), nil
}

// ── Import ────────────────────────────────────────────────────────────────────
// Bulk insert of records parsed upstream. Dates are stored as YYYY-MM-DD and
// references are kept raw; normalization happens at match time.

func (s *cashService) Import(ctx context.Context, req dto.ImportCashPaymentsRequest) (*dto.ImportCashPaymentsResponse, error) {
	paiements := make([]model.PaiementCash, 0, len(req.Paiements))
	for i, p := range req.Paiements {
		d, err := reconciliation.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("paiement %d: %w", i+1, err)
		}
		paiements = append(paiements, model.PaiementCash{
			Date:      reconciliation.ISODate(d),
			Reference: strings.TrimSpace(p.Reference),
			Montant:   p.Montant,
		})
	}
	if err := s.repo.CreateBatch(ctx, paiements); err != nil {
		return nil, err
	}
	return &dto.ImportCashPaymentsResponse{Imported: len(paiements)}, nil
}
