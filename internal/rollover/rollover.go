// Package rollover carries a day's closing stock (stock soir) forward as the
// next day's opening stock (stock matin).
package rollover

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mata/internal/model"
	"mata/internal/reconciliation"
	"mata/internal/repository"

	"github.com/rs/zerolog/log"
)

// State is the step a run has reached.
type State int

const (
	StateIdle State = iota
	StateLoadingSource
	StateTransforming
	StateValidating
	StateWriting
	StateDryRun
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingSource:
		return "loading_source"
	case StateTransforming:
		return "transforming"
	case StateValidating:
		return "validating"
	case StateWriting:
		return "writing"
	case StateDryRun:
		return "dry_run"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrSourceMissing = errors.New("stock soir source introuvable")
	ErrSourceEmpty   = errors.New("stock soir source vide")
	ErrTargetExists  = errors.New("stock matin cible déjà présent (écrasement désactivé)")
	ErrInvalidStock  = errors.New("stock transformé invalide")
)

const lockTTL = 2 * time.Minute

// Locker guards a target day against concurrent runs.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// Options of one run. A zero Source means yesterday.
type Options struct {
	Source    time.Time
	DryRun    bool
	Overwrite bool
}

// Result describes what a run did. Output holds the transformed file, which
// is the only trace of a dry run.
type Result struct {
	Source     time.Time
	Target     time.Time
	State      State
	Lignes     int
	TargetPath string
	BackupPath string
	Output     model.StockFile
}

type Job struct {
	store  repository.StockStore
	locker Locker
	now    func() time.Time
}

// NewJob returns a job writing through store. locker may be nil.
func NewJob(store repository.StockStore, locker Locker) *Job {
	return &Job{store: store, locker: locker, now: time.Now}
}

// Dates resolves the source and target days of opts: target is always the
// day after source.
func (j *Job) Dates(opts Options) (source, target time.Time) {
	source = opts.Source
	if source.IsZero() {
		n := j.now()
		source = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location()).AddDate(0, 0, -1)
	}
	return source, source.AddDate(0, 0, 1)
}

// Run executes one rollover. On failure the returned Result carries
// StateFailed and the step reached is logged.
func (j *Job) Run(ctx context.Context, opts Options) (*Result, error) {
	source, target := j.Dates(opts)
	res := &Result{
		Source:     source,
		Target:     target,
		State:      StateIdle,
		TargetPath: j.store.StockPath(target, model.PeriodoMatin),
	}
	logger := log.With().
		Str("source", reconciliation.ISODate(source)).
		Str("target", reconciliation.ISODate(target)).
		Bool("dry_run", opts.DryRun).
		Logger()

	fail := func(err error) (*Result, error) {
		logger.Error().Err(err).Str("state", res.State.String()).Msg("rollover failed")
		res.State = StateFailed
		return res, err
	}

	if j.locker != nil && !opts.DryRun {
		release, err := j.locker.Acquire(ctx, "lock:rollover:"+reconciliation.ISODate(target), lockTTL)
		if err != nil {
			return fail(fmt.Errorf("verrou: %w", err))
		}
		defer release()
	}

	res.State = StateLoadingSource
	src, err := j.store.ReadStock(ctx, source, model.PeriodoSoir)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(fmt.Errorf("%w: %s", ErrSourceMissing, j.store.StockPath(source, model.PeriodoSoir)))
	}
	if err != nil {
		return fail(err)
	}
	if len(src) == 0 {
		return fail(ErrSourceEmpty)
	}

	res.State = StateTransforming
	out := Transform(src, source, target)
	res.Output = out
	res.Lignes = len(out)

	res.State = StateValidating
	if err := Validate(out, target); err != nil {
		return fail(err)
	}

	if opts.DryRun {
		res.State = StateDryRun
		for _, key := range sortedKeys(out) {
			l := out[key]
			logger.Info().Str("key", key).Str("point_de_vente", l.PointDeVente).Str("produit", l.Produit).
				Str("nombre", l.Nombre.String()).Str("pu", l.PU.String()).Msg("dry-run line")
		}
		res.State = StateDone
		logger.Info().Int("lignes", res.Lignes).Msg("rollover dry run, nothing written")
		return res, nil
	}

	res.State = StateWriting
	exists, err := j.store.StockExists(ctx, target, model.PeriodoMatin)
	if err != nil {
		return fail(err)
	}
	if exists {
		if !opts.Overwrite {
			return fail(fmt.Errorf("%w: %s", ErrTargetExists, res.TargetPath))
		}
		backup, err := j.store.BackupStock(ctx, target, model.PeriodoMatin, j.now())
		if err != nil {
			return fail(err)
		}
		res.BackupPath = backup
		logger.Info().Str("backup", backup).Msg("existing stock matin backed up")
	}
	if err := j.store.WriteStock(ctx, target, model.PeriodoMatin, out); err != nil {
		return fail(err)
	}

	res.State = StateDone
	logger.Info().Int("lignes", res.Lignes).Str("path", res.TargetPath).Msg("rollover done")
	return res, nil
}

// Carried reports whether the target day of opts already holds a stock matin
// written by a rollover from its source day: every line carries the automatic
// comment.
func (j *Job) Carried(ctx context.Context, opts Options) (bool, error) {
	source, target := j.Dates(opts)
	file, err := j.store.ReadStock(ctx, target, model.PeriodoMatin)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(file) == 0 {
		return false, nil
	}
	want := Commentaire(source)
	for _, l := range file {
		if l.Commentaire != want {
			return false, nil
		}
	}
	return true, nil
}

// Commentaire is the comment set on every carried-over line.
func Commentaire(source time.Time) string {
	return "Copie automatique du stock soir du " + reconciliation.DisplayDate(source)
}

// Transform rewrites soir lines as the target day's matin lines. Keys, point
// of sale, product, quantity and unit price are kept; the amount is
// recomputed.
func Transform(src model.StockFile, source, target time.Time) model.StockFile {
	out := make(model.StockFile, len(src))
	date := reconciliation.DisplayDate(target)
	comment := Commentaire(source)
	for key, l := range src {
		out[key] = model.LigneStock{
			Date:         date,
			PointDeVente: l.PointDeVente,
			Produit:      l.Produit,
			Nombre:       l.Nombre,
			PU:           l.PU,
			Montant:      l.MontantCalcule(),
			Commentaire:  comment,
			TypeStock:    model.PeriodoMatin,
		}
	}
	return out
}

// Validate checks every line and reports all problems at once.
func Validate(file model.StockFile, target time.Time) error {
	date := reconciliation.DisplayDate(target)
	var issues []string
	for _, key := range sortedKeys(file) {
		l := file[key]
		if strings.TrimSpace(l.PointDeVente) == "" {
			issues = append(issues, key+": point de vente manquant")
		}
		if strings.TrimSpace(l.Produit) == "" {
			issues = append(issues, key+": produit manquant")
		}
		if l.Nombre.IsNegative() {
			issues = append(issues, key+": quantité négative")
		}
		if l.PU.IsNegative() {
			issues = append(issues, key+": prix unitaire négatif")
		}
		if l.Date != date {
			issues = append(issues, fmt.Sprintf("%s: date %q au lieu de %q", key, l.Date, date))
		}
		if l.TypeStock != model.PeriodoMatin {
			issues = append(issues, fmt.Sprintf("%s: typeStock %q", key, l.TypeStock))
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidStock, strings.Join(issues, "; "))
	}
	return nil
}
