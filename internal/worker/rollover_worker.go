package worker

// rollover_worker.go
// Runs stock rollover jobs from QueueRollover. Failures that a retry cannot
// fix (missing or invalid source, protected target) go straight to the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mata/internal/reconciliation"
	"mata/internal/rollover"
)

// RolloverPayload is the job envelope sent to QueueRollover.
type RolloverPayload struct {
	// Date is the source day (YYYY-MM-DD); empty means yesterday.
	Date      string `json:"date,omitempty"`
	DryRun    bool   `json:"dry_run"`
	Overwrite *bool  `json:"overwrite,omitempty"`
}

type rolloverRunner interface {
	Run(ctx context.Context, opts rollover.Options) (*rollover.Result, error)
}

type RolloverWorker struct {
	job       rolloverRunner
	overwrite bool
}

// NewRolloverWorker runs jobs with the given default overwrite policy.
func NewRolloverWorker(job rolloverRunner, overwrite bool) *RolloverWorker {
	return &RolloverWorker{job: job, overwrite: overwrite}
}

// Options turns a payload into run options.
func (w *RolloverWorker) Options(p RolloverPayload) (rollover.Options, error) {
	opts := rollover.Options{DryRun: p.DryRun, Overwrite: w.overwrite}
	if p.Overwrite != nil {
		opts.Overwrite = *p.Overwrite
	}
	if p.Date != "" {
		src, err := time.Parse(reconciliation.LayoutISO, p.Date)
		if err != nil {
			return opts, fmt.Errorf("%w: %q", reconciliation.ErrInvalidDate, p.Date)
		}
		opts.Source = src
	}
	return opts, nil
}

func (w *RolloverWorker) Handle(ctx context.Context, raw json.RawMessage) error {
	var p RolloverPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Permanent(fmt.Errorf("rollover payload: %w", err))
	}
	opts, err := w.Options(p)
	if err != nil {
		return Permanent(err)
	}

	_, err = w.job.Run(ctx, opts)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rollover.ErrSourceMissing),
		errors.Is(err, rollover.ErrSourceEmpty),
		errors.Is(err, rollover.ErrTargetExists),
		errors.Is(err, rollover.ErrInvalidStock):
		return Permanent(err)
	default:
		return err
	}
}
