// Command copystock copies a day's stock soir into the next day's stock matin.
//
//	copystock [--dry-run] [--date=YYYY-MM-DD] [--overwrite=true]
//
// --date is the source day and defaults to yesterday. Exit status is 0 on
// success (including a dry run) and 1 on any failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mata/internal/config"
	"mata/internal/infra"
	"mata/internal/reconciliation"
	"mata/internal/repository"
	"mata/internal/rollover"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	dryRun := flag.Bool("dry-run", false, "show the transformed stock without writing it")
	date := flag.String("date", "", "source day YYYY-MM-DD (default: yesterday)")
	overwrite := flag.Bool("overwrite", true, "replace an existing stock matin after backing it up")
	dataDir := flag.String("data-dir", "", "stock files root (default: DATA_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 1
	}
	root := cfg.DataDir
	if *dataDir != "" {
		root = *dataDir
	}

	opts := rollover.Options{DryRun: *dryRun, Overwrite: *overwrite}
	if *date != "" {
		src, err := time.Parse(reconciliation.LayoutISO, *date)
		if err != nil {
			log.Error().Str("date", *date).Msg("date invalide, format attendu YYYY-MM-DD")
			return 1
		}
		opts.Source = src
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The lock only matters when the server's cron may run at the same time.
	var rdb *redis.Client
	if !*dryRun && cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without lock")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	job := rollover.NewJob(repository.NewStockStore(root), infra.NewRedisLocker(rdb))
	res, err := job.Run(ctx, opts)
	if err != nil {
		return 1
	}

	if res.BackupPath != "" {
		fmt.Printf("sauvegarde : %s\n", res.BackupPath)
	}
	if *dryRun {
		fmt.Printf("dry run : %d lignes pour le %s (rien n'a été écrit)\n", res.Lignes, reconciliation.DisplayDate(res.Target))
		return 0
	}
	fmt.Printf("%d lignes copiées vers %s\n", res.Lignes, res.TargetPath)
	return 0
}
