package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/lborgatow/games-scraping/config"
	"github.com/lborgatow/games-scraping/models"
	"github.com/lborgatow/games-scraping/scraper/gamersgate"
	"github.com/lborgatow/games-scraping/scraper/gog"
	"github.com/lborgatow/games-scraping/scraper/nuuvem"
	"github.com/lborgatow/games-scraping/scraper/steam"
	"github.com/lborgatow/games-scraping/services"
	"github.com/lborgatow/games-scraping/storage"
	"github.com/lborgatow/games-scraping/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	runID := uuid.New().String()[:8]
	ctx := context.Background()

	logger.Info("=== Games price catalog run %s starting ===", runID)
	logger.Info("Config — quota: %d/%s | concurrency: %d | slice divisor: %d",
		cfg.QuotaCalls, cfg.QuotaWindow, cfg.MaxConcurrency, cfg.SliceDivisor)

	store, err := storage.NewJSONStore(cfg.DetailsPath, cfg.CatalogPath)
	if err != nil {
		logger.Error("Failed to open document store: %v", err)
		os.Exit(1)
	}

	// Both documents must load before any scraping: a run never overwrites
	// state it could not read.
	detailRecords, err := store.LoadDetails()
	if err != nil {
		logger.Error("Failed to load detail document: %v", err)
		os.Exit(1)
	}
	previous, err := store.LoadCatalog()
	if err != nil {
		logger.Error("Failed to load catalog document: %v", err)
		os.Exit(1)
	}
	cache := services.NewDetailCache(detailRecords)
	logger.Info("Loaded %d cached details, %d cataloged games", cache.Len(), len(previous))

	start := time.Now()

	// Steam phase: app list, then batched prices over the worker pool.
	steamClient := steam.New(cfg, logger)
	apps, err := steamClient.Apps(ctx)
	if err != nil {
		logger.Error("Steam app list failed: %v", err)
		os.Exit(1)
	}
	steamOffers, err := steamClient.Prices(ctx, apps)
	if err != nil {
		logger.Error("Steam prices failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Steam phase done — %d offers (%.2fs)", len(steamOffers), time.Since(start).Seconds())

	// Browser and HTML retailers. A failed retailer contributes no offers
	// this run; its slots fold to unavailable until it lists again.
	nuuvemOffers := scrapeRetailer(ctx, logger, nuuvem.Shop, nuuvem.New(cfg, logger).Scrape)
	gamersgateOffers := scrapeRetailer(ctx, logger, gamersgate.Shop, gamersgate.New(cfg, logger).Scrape)
	gogOffers := scrapeRetailer(ctx, logger, gog.Shop, gog.New(cfg, logger).Scrape)

	// Enrichment phase: fetch details only for ids never seen before.
	ids := make([]string, 0, len(steamOffers))
	for _, o := range steamOffers {
		ids = append(ids, o.ID)
	}
	missing := cache.MissingIDs(ids)
	logger.Info("%d new Steam ids to enrich", len(missing))

	pool := utils.NewWorkerPool(cfg.MaxConcurrency)
	for _, id := range missing {
		id := id
		pool.Submit(func() error {
			cache.Record(steamClient.Detail(ctx, id))
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		logger.Error("Detail enrichment failed: %v", err)
		os.Exit(1)
	}
	if err := store.SaveDetails(cache.Records()); err != nil {
		logger.Error("Failed to save detail document: %v", err)
		os.Exit(1)
	}
	logger.Info("Detail document saved — %d records", cache.Len())

	// Reconciliation phase.
	steamOffers = services.JoinDetails(services.Dedupe(steamOffers), cache)

	shops := map[string][]models.Offer{
		steam.Shop:      steamOffers,
		nuuvem.Shop:     services.Dedupe(nuuvemOffers),
		gamersgate.Shop: services.Dedupe(gamersgateOffers),
		gog.Shop:        services.Dedupe(gogOffers),
	}

	merger := services.NewCatalogMerger(logger, []string{
		steam.Shop, nuuvem.Shop, gamersgate.Shop, gog.Shop,
	})
	fresh := merger.Build(shops)
	folded := merger.Fold(fresh, previous)
	logger.Info("Catalog reconciled — %d games (%d this run)", len(folded), len(fresh))

	if err := store.SaveCatalog(folded); err != nil {
		logger.Error("Failed to save catalog document: %v", err)
		os.Exit(1)
	}
	logger.Info("Catalog document saved")

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			defer pgWriter.Close()
			if err := pgWriter.Write(folded); err != nil {
				logger.Error("PostgreSQL mirror failed: %v", err)
			} else {
				logger.Info("Catalog mirrored to PostgreSQL")
			}
		}
	}

	logger.Info("=== Run %s finished in %.2fs ===", runID, time.Since(start).Seconds())
}

// scrapeRetailer runs one retailer phase, timing it and downgrading failures
// to an empty result set.
func scrapeRetailer(ctx context.Context, logger *utils.Logger, shop string,
	scrape func(context.Context) ([]models.Offer, error)) []models.Offer {

	start := time.Now()
	offers, err := scrape(ctx)
	if err != nil {
		logger.Error("%s scrape failed: %v", shop, err)
		return nil
	}
	logger.Info("%s phase done — %d offers (%.2fs)", shop, len(offers), time.Since(start).Seconds())
	return offers
}
