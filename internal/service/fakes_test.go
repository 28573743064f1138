package service

import (
	"context"
	"fmt"
	"time"

	"mata/internal/model"
	"mata/internal/reconciliation"
	"mata/internal/repository"
)

// ── In-memory StockStore ─────────────────────────────────────────────────────

type fakeStockStore struct {
	stock      map[string]model.StockFile
	transferts map[string][]model.Transfert
	backups    []string
}

var _ repository.StockStore = (*fakeStockStore)(nil)

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{
		stock:      map[string]model.StockFile{},
		transferts: map[string][]model.Transfert{},
	}
}

func stockKey(date time.Time, periode string) string {
	return date.Format("2006-01-02") + "/" + periode
}

func (f *fakeStockStore) ReadStock(_ context.Context, date time.Time, periode string) (model.StockFile, error) {
	file, ok := f.stock[stockKey(date, periode)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return file, nil
}

func (f *fakeStockStore) ReadTransferts(_ context.Context, date time.Time) ([]model.Transfert, error) {
	return f.transferts[date.Format("2006-01-02")], nil
}

func (f *fakeStockStore) WriteStock(_ context.Context, date time.Time, periode string, file model.StockFile) error {
	f.stock[stockKey(date, periode)] = file
	return nil
}

func (f *fakeStockStore) StockExists(_ context.Context, date time.Time, periode string) (bool, error) {
	_, ok := f.stock[stockKey(date, periode)]
	return ok, nil
}

func (f *fakeStockStore) BackupStock(_ context.Context, date time.Time, periode string, at time.Time) (string, error) {
	p := f.StockPath(date, periode) + ".backup-" + at.Format("20060102-150405.000")
	f.backups = append(f.backups, p)
	return p, nil
}

func (f *fakeStockStore) StockPath(date time.Time, periode string) string {
	return "mem/" + stockKey(date, periode) + ".json"
}

// ── In-memory VenteRepository ────────────────────────────────────────────────

type fakeVenteRepo struct {
	ventes []model.Vente
	err    error
}

var _ repository.VenteRepository = (*fakeVenteRepo)(nil)

func (r *fakeVenteRepo) ListByDate(_ context.Context, date string) ([]model.Vente, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Vente
	for _, v := range r.ventes {
		if v.Date == date {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVenteRepo) CreateBatch(_ context.Context, ventes []model.Vente) error {
	r.ventes = append(r.ventes, ventes...)
	return nil
}

// ── In-memory ReconciliationRepository ───────────────────────────────────────

type fakeRecRepo struct {
	records map[string]*model.Reconciliation
	findErr error
}

var _ repository.ReconciliationRepository = (*fakeRecRepo)(nil)

func newFakeRecRepo() *fakeRecRepo {
	return &fakeRecRepo{records: map[string]*model.Reconciliation{}}
}

func (r *fakeRecRepo) FindByDate(_ context.Context, date string) (*model.Reconciliation, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	rec, ok := r.records[date]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRecRepo) Save(_ context.Context, rec *model.Reconciliation, expected *int) (int, error) {
	current := 0
	if existing, ok := r.records[rec.Date]; ok {
		current = existing.Version
	}
	if expected != nil && *expected != current {
		return 0, repository.ErrVersionConflict
	}
	cp := *rec
	cp.Version = current + 1
	cp.UpdatedAt = time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	r.records[rec.Date] = &cp
	rec.Version = cp.Version
	return cp.Version, nil
}

// ── In-memory PaiementCashRepository ─────────────────────────────────────────

type fakeCashRepo struct {
	days     []reconciliation.CashDay
	inserted []model.PaiementCash
	err      error
}

var _ repository.PaiementCashRepository = (*fakeCashRepo)(nil)

func (r *fakeCashRepo) Aggregated(_ context.Context) ([]reconciliation.CashDay, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.days, nil
}

func (r *fakeCashRepo) CreateBatch(_ context.Context, p []model.PaiementCash) error {
	if r.err != nil {
		return fmt.Errorf("insert: %w", r.err)
	}
	r.inserted = append(r.inserted, p...)
	return nil
}
