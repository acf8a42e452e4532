package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_pulse/internal/adapters/observability"
	redisad "review_pulse/internal/adapters/redis"
	"review_pulse/internal/app"
	"review_pulse/internal/shared"
	mysqlrepo "review_pulse/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "analyzer")

	log.Info().
		Int("workers", cfg.Workers).
		Msg("analyzer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	analyses := app.NewAnalysisService(repo, cache, cfg.CacheTTL)

	ids, err := repo.ListBusinessIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list businesses failed")
	}
	log.Info().Int("businesses", len(ids)).Msg("recomputing analyses")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range ids {
		id := id

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(businessID int64) {
			defer wg.Done()
			defer sem.Release(1)

			if err := analyses.Recompute(ctx, businessID); err != nil {
				log.Warn().Int64("id", businessID).Err(err).Msg("recompute failed")
				return
			}
			log.Info().Int64("id", businessID).Msg("recompute ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("analysis pass completed")
}
