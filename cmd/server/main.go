package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mata/internal/config"
	"mata/internal/handler"
	"mata/internal/infra"
	"mata/internal/repository"
	"mata/internal/rollover"
	"mata/internal/router"
	"mata/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger: pretty in dev, JSON in production
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis is optional: without it the snapshot cache stays in memory and
	// rollover jobs run inline, unlocked.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without it")
			rdb = nil
		}
	}

	var paymentsCB *infra.CircuitBreaker
	if cfg.PaymentsAPIURL != "" {
		paymentsCB = infra.NewCircuitBreaker(infra.DefaultCBConfig("payments-api"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Rollover: the job, its worker, and how runs are scheduled. Worker
	// handlers are wired here (composition root).
	stockStore := repository.NewStockStore(cfg.DataDir)
	rolloverJob := rollover.NewJob(stockStore, infra.NewRedisLocker(rdb))
	rolloverWorker := worker.NewRolloverWorker(rolloverJob, cfg.RolloverOverwrite)

	var enqueuer handler.RolloverEnqueuer
	if rdb != nil {
		pool := worker.NewPool(rdb)
		pool.Handle(worker.QueueRollover, worker.JobTypeRollover, rolloverWorker.Handle)
		pool.Start(ctx, cfg.WorkerPoolSize)
		enqueuer = worker.NewDispatcher(rdb)
	} else {
		enqueuer = worker.NewInlineDispatcher(ctx, rolloverWorker.Handle)
	}

	if cfg.RolloverEnabled {
		worker.StartRolloverCron(ctx, worker.RolloverCronConfig{
			Hour: cfg.RolloverHour,
			Trigger: func(ctx context.Context) error {
				_, err := enqueuer.EnqueueRollover(ctx, worker.RolloverPayload{})
				return err
			},
			Done: func(ctx context.Context) (bool, error) {
				return rolloverJob.Carried(ctx, rollover.Options{})
			},
		})
	}

	r := router.New(cfg, db, rdb, paymentsCB, enqueuer)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("reconciliation backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
