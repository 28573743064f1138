package worker

// cron.go
// Background goroutine that triggers the daily stock rollover once the
// configured hour is reached. It fires at most once per calendar day, and not
// at all when Done reports the day already rolled over (a restart within the
// hour).

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const cronTickInterval = time.Minute

// RolloverCronConfig holds the dependencies of the daily trigger.
type RolloverCronConfig struct {
	Hour    int
	Trigger func(ctx context.Context) error
	// Done, when set, is asked before firing. A true answer skips the day.
	Done func(ctx context.Context) (bool, error)
	Now  func() time.Time
}

// StartRolloverCron launches the ticker. It respects ctx for graceful shutdown.
func StartRolloverCron(ctx context.Context, cfg RolloverCronConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	go func() {
		ticker := time.NewTicker(cronTickInterval)
		defer ticker.Stop()

		log.Info().Int("hour", cfg.Hour).Msg("rollover_cron: started")

		var last time.Time
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("rollover_cron: shutting down")
				return
			case <-ticker.C:
				last = tick(ctx, cfg, cfg.Now(), last)
			}
		}
	}()
}

// tick runs one check of the cron and returns the new last-fired time.
func tick(ctx context.Context, cfg RolloverCronConfig, now, last time.Time) time.Time {
	if !due(now, cfg.Hour, last) {
		return last
	}
	if cfg.Done != nil {
		done, err := cfg.Done(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("rollover_cron: could not check today's stock, triggering anyway")
		}
		if done {
			log.Info().Msg("rollover_cron: stock matin already carried over, skipping")
			return now
		}
	}
	if err := cfg.Trigger(ctx); err != nil {
		log.Error().Err(err).Msg("rollover_cron: trigger failed")
		return now
	}
	log.Info().Msg("rollover_cron: daily rollover triggered")
	return now
}

// due reports whether the daily run should fire at now. A restart later in
// the day does not fire again.
func due(now time.Time, hour int, last time.Time) bool {
	if now.Hour() != hour {
		return false
	}
	if last.IsZero() {
		return true
	}
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}
