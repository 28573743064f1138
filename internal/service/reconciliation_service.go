package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mata/internal/dto"
	"mata/internal/infra"
	"mata/internal/model"
	"mata/internal/reconciliation"
	"mata/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	SourceLoaded   = "loaded"
	SourceComputed = "computed"

	DetailSourceCache    = "cache"
	DetailSourceStored   = "stored"
	DetailSourceComputed = "computed"
)

type ReconciliationService interface {
	// Load resolves a day: the stored record when present and readable,
	// otherwise a fresh calculation.
	Load(ctx context.Context, date time.Time) (*reconciliation.Session, error)
	Calculate(ctx context.Context, date time.Time) (*reconciliation.Session, error)
	// Stored returns the raw persisted record, repository.ErrNotFound if none.
	Stored(ctx context.Context, date time.Time) (*dto.StoredReconciliationResponse, error)
	Save(ctx context.Context, req dto.SaveReconciliationRequest) (*dto.SaveReconciliationResponse, error)
	// LoadComments returns only the stored comments, empty when no record exists.
	LoadComments(ctx context.Context, date time.Time) (map[string]string, error)
	Detail(ctx context.Context, date time.Time, pdv string) (*dto.DetailResponse, error)
	View(ctx context.Context, date time.Time) (*dto.ReconciliationView, error)
	Report(ctx context.Context, date time.Time) ([]byte, error)
}

type reconciliationService struct {
	points  []string
	stock   repository.StockStore
	ventes  repository.VenteRepository
	records repository.ReconciliationRepository
	cash    CashService
	cache   infra.SnapshotCache
	now     func() time.Time
}

func NewReconciliationService(
	points []string,
	stock repository.StockStore,
	ventes repository.VenteRepository,
	records repository.ReconciliationRepository,
	cash CashService,
	cache infra.SnapshotCache,
) ReconciliationService {
	if cache == nil {
		cache = infra.NoopSnapshotCache{}
	}
	return &reconciliationService{
		points:  append([]string(nil), points...),
		stock:   stock,
		ventes:  ventes,
		records: records,
		cash:    cash,
		cache:   cache,
		now:     time.Now,
	}
}

// ── Load ──────────────────────────────────────────────────────────────────────

func (s *reconciliationService) Load(ctx context.Context, date time.Time) (*reconciliation.Session, error) {
	rec, err := s.records.FindByDate(ctx, reconciliation.DisplayDate(date))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.Calculate(ctx, date)
	case err != nil:
		log.Warn().Err(err).Str("date", reconciliation.DisplayDate(date)).Msg("reconciliation store unavailable, calculating")
		return s.Calculate(ctx, date)
	}

	sess, err := sessionFromRecord(date, rec)
	if err != nil {
		log.Warn().Err(err).Str("date", rec.Date).Msg("stored reconciliation is malformed, calculating")
		return s.Calculate(ctx, date)
	}
	return sess, nil
}

func sessionFromRecord(date time.Time, rec *model.Reconciliation) (*reconciliation.Session, error) {
	var entries reconciliation.Entries
	if err := json.Unmarshal([]byte(rec.Data), &entries); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("data: no entries")
	}
	comments := map[string]string{}
	if rec.Comments != "" {
		if err := json.Unmarshal([]byte(rec.Comments), &comments); err != nil {
			return nil, fmt.Errorf("comments: %w", err)
		}
	}
	cash := map[string]decimal.Decimal{}
	if rec.CashPaymentData != "" {
		if err := json.Unmarshal([]byte(rec.CashPaymentData), &cash); err != nil {
			return nil, fmt.Errorf("cashPaymentData: %w", err)
		}
	}

	sess := reconciliation.NewSession(date)
	sess.MarkLoaded(entries, comments, cash, rec.Version)
	return sess, nil
}

// ── Calculate ─────────────────────────────────────────────────────────────────

func (s *reconciliationService) Calculate(ctx context.Context, date time.Time) (*reconciliation.Session, error) {
	display := reconciliation.DisplayDate(date)

	matin, err := s.readStock(ctx, date, model.PeriodoMatin)
	if err != nil {
		return nil, err
	}
	soir, err := s.readStock(ctx, date, model.PeriodoSoir)
	if err != nil {
		return nil, err
	}
	transferts, err := s.stock.ReadTransferts(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("transferts: %w", err)
	}
	ventes, err := s.ventes.ListByDate(ctx, display)
	if err != nil {
		return nil, fmt.Errorf("ventes: %w", err)
	}

	agg := reconciliation.Aggregate(s.points, matin, soir, transferts)
	agg.AddVentes(ventes)
	if len(agg.HorsListe) > 0 {
		log.Warn().Str("date", display).Strs("points", agg.HorsListe).Msg("lines for points of sale outside the configured list")
	}

	cash, err := s.cash.AggregateForDate(ctx, date)
	if err != nil {
		log.Warn().Err(err).Str("date", display).Msg("cash payments unavailable, cash set to zero")
		cash = map[string]decimal.Decimal{}
	}

	snap := &reconciliation.Snapshot{Date: display, Aggregation: agg}
	if err := s.cache.Set(ctx, snap); err != nil {
		log.Warn().Err(err).Str("date", display).Msg("debug snapshot not cached")
	}

	sess := reconciliation.NewSession(date)
	sess.MarkComputed(agg.Entries(), snap, cash)
	log.Info().Str("date", display).Int("points", len(sess.Entries)).Msg("reconciliation calculated")
	return sess, nil
}

// readStock treats a missing file as an empty stock.
func (s *reconciliationService) readStock(ctx context.Context, date time.Time, periode string) ([]model.LigneStock, error) {
	file, err := s.stock.ReadStock(ctx, date, periode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stock %s: %w", periode, err)
	}
	return file.Lignes(), nil
}

// ── Stored / Save / Comments ──────────────────────────────────────────────────

func (s *reconciliationService) Stored(ctx context.Context, date time.Time) (*dto.StoredReconciliationResponse, error) {
	rec, err := s.records.FindByDate(ctx, reconciliation.DisplayDate(date))
	if err != nil {
		return nil, err
	}
	return &dto.StoredReconciliationResponse{
		Date:            rec.Date,
		Reconciliation:  rec.Data,
		Comments:        rec.Comments,
		CashPaymentData: rec.CashPaymentData,
		Version:         rec.Version,
		UpdatedAt:       rec.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (s *reconciliationService) Save(ctx context.Context, req dto.SaveReconciliationRequest) (*dto.SaveReconciliationResponse, error) {
	date, err := reconciliation.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	// Derived fields sent by the client are not trusted: they are recomputed
	// from the raw ones and the cash data before anything is stored.
	sess := reconciliation.NewSession(date)
	sess.MarkLoaded(req.Reconciliation, req.Comments, req.CashPaymentData, 0)

	data, err := json.Marshal(sess.Entries)
	if err != nil {
		return nil, fmt.Errorf("encode reconciliation: %w", err)
	}
	commentsJSON, err := json.Marshal(sess.Comments)
	if err != nil {
		return nil, fmt.Errorf("encode comments: %w", err)
	}
	cashJSON, err := json.Marshal(sess.CashPaymentData)
	if err != nil {
		return nil, fmt.Errorf("encode cash payment data: %w", err)
	}

	rec := &model.Reconciliation{
		Date:            reconciliation.DisplayDate(date),
		Data:            string(data),
		Comments:        string(commentsJSON),
		CashPaymentData: string(cashJSON),
	}
	version, err := s.records.Save(ctx, rec, req.Version)
	if err != nil {
		return nil, err
	}
	log.Info().Str("date", rec.Date).Int("version", version).Msg("reconciliation saved")
	return &dto.SaveReconciliationResponse{
		Success: true,
		Message: "Réconciliation sauvegardée avec succès",
		Version: version,
	}, nil
}

func (s *reconciliationService) LoadComments(ctx context.Context, date time.Time) (map[string]string, error) {
	rec, err := s.records.FindByDate(ctx, reconciliation.DisplayDate(date))
	if errors.Is(err, repository.ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	comments := map[string]string{}
	if rec.Comments == "" {
		return comments, nil
	}
	if err := json.Unmarshal([]byte(rec.Comments), &comments); err != nil {
		return nil, fmt.Errorf("comments: %w", err)
	}
	return comments, nil
}

// ── Detail ────────────────────────────────────────────────────────────────────
// Cached snapshot first, then a degraded line from the stored record, and as
// a last resort a fresh calculation.

func (s *reconciliationService) Detail(ctx context.Context, date time.Time, pdv string) (*dto.DetailResponse, error) {
	display := reconciliation.DisplayDate(date)
	resp := &dto.DetailResponse{Date: display, PointDeVente: pdv}

	snap, ok, err := s.cache.Get(ctx, display)
	if err != nil {
		log.Warn().Err(err).Str("date", display).Msg("debug snapshot cache unavailable")
	}
	if ok {
		produits := reconciliation.BuildDetail(pdv, snap)
		if produits == nil {
			return nil, fmt.Errorf("%w: %s", reconciliation.ErrUnknownPointDeVente, pdv)
		}
		resp.Source = DetailSourceCache
		resp.Produits = produits
		if site, ok := snap.Aggregation.Sites[pdv]; ok {
			e := reconciliation.Compute(reconciliation.Entry{
				StockMatin:    site.StockMatin,
				StockSoir:     site.StockSoir,
				Transferts:    site.Transferts,
				VentesSaisies: site.VentesSaisies,
			})
			resp.Entry = &e
		}
		return resp, nil
	}

	rec, err := s.records.FindByDate(ctx, display)
	if err == nil {
		if sess, perr := sessionFromRecord(date, rec); perr == nil {
			e, ok := sess.Entries[pdv]
			if !ok {
				return nil, fmt.Errorf("%w: %s", reconciliation.ErrUnknownPointDeVente, pdv)
			}
			resp.Source = DetailSourceStored
			resp.Degraded = true
			resp.Entry = &e
			resp.Produits = reconciliation.DegradedDetail(e)
			return resp, nil
		}
	}

	sess, err := s.Calculate(ctx, date)
	if err != nil {
		return nil, err
	}
	produits := reconciliation.BuildDetail(pdv, sess.Snapshot)
	if produits == nil {
		return nil, fmt.Errorf("%w: %s", reconciliation.ErrUnknownPointDeVente, pdv)
	}
	e := sess.Entries[pdv]
	resp.Source = DetailSourceComputed
	resp.Entry = &e
	resp.Produits = produits
	return resp, nil
}

// ── View / Report ─────────────────────────────────────────────────────────────

func (s *reconciliationService) View(ctx context.Context, date time.Time) (*dto.ReconciliationView, error) {
	sess, err := s.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	view := &dto.ReconciliationView{
		Date:            reconciliation.DisplayDate(date),
		Source:          SourceLoaded,
		Version:         sess.Version,
		Totals:          sess.Totals(),
		Comments:        sess.Comments,
		CashPaymentData: sess.CashPaymentData,
	}
	if sess.State == reconciliation.StateComputed {
		view.Source = SourceComputed
		if sess.Snapshot != nil && sess.Snapshot.Aggregation != nil {
			view.HorsListe = sess.Snapshot.Aggregation.HorsListe
		}
	}
	for _, pdv := range sess.Points(s.points) {
		e := sess.Entries[pdv]
		sev := e.Severity()
		view.Points = append(view.Points, dto.PointView{
			PointDeVente: pdv,
			Entry:        e,
			Severity:     sev,
			Color:        sev.Color(),
		})
	}
	return view, nil
}

func (s *reconciliationService) Report(ctx context.Context, date time.Time) ([]byte, error) {
	sess, err := s.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	return infra.GenerateReconciliationPDF(sess, s.points, s.now())
}
