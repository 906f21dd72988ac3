package gog

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/lborgatow/games-scraping/config"
	"github.com/lborgatow/games-scraping/models"
	"github.com/lborgatow/games-scraping/scraper/browser"
	"github.com/lborgatow/games-scraping/services"
	"github.com/lborgatow/games-scraping/utils"
)

const (
	catalogURL = "https://www.gog.com/en/games?order=asc:title&hideDLCs=true&excludeReleaseStatuses=upcoming"

	// Shop is the retailer name this adapter contributes to the catalog.
	Shop = "gog"
)

// Scraper walks the GOG games catalog with a headless browser. GOG renders
// discount, old price and current price inside a single tile element, so the
// compound price parser applies.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryPolicy
}

// New creates a ready-to-use GOG scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

type tile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"href"`
	Image string `json:"img"`
	Price string `json:"price"`
}

// Scrape paginates through the catalog and returns the normalized offers.
func (s *Scraper) Scrape(ctx context.Context) ([]models.Offer, error) {
	allocCtx, cancel := browser.Allocator(ctx, s.cfg.ChromeBin)
	defer cancel()

	lastPage, err := s.lastPage(allocCtx)
	if err != nil {
		return nil, fmt.Errorf("gog: last page: %w", err)
	}
	s.logger.Info("[gog] %d pages found", lastPage)

	var offers []models.Offer
	for page := 1; page <= lastPage; page++ {
		tiles, err := s.scrapePage(allocCtx, page)
		if err != nil {
			s.logger.Error("[gog] Page %d failed: %v", page, err)
			continue
		}

		for _, t := range tiles {
			if t.Name == "" || !services.KeepName(t.Name) {
				continue
			}
			offers = append(offers, models.Offer{
				ID:     t.ID,
				Name:   t.Name,
				Image:  t.Image,
				URL:    t.URL,
				Prices: services.ParseCompound(t.Price),
			})
		}
		s.logger.Info("[gog] Page %d processed — %d offers so far", page, len(offers))
	}

	return offers, nil
}

func (s *Scraper) lastPage(allocCtx context.Context) (int, error) {
	var lastPage int

	err := s.retry.Do(allocCtx, "gog-last-page", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(catalogURL),
			chromedp.Sleep(5*time.Second),
			chromedp.Evaluate(`
				(function() {
					var pages = document.querySelectorAll('[selenium-id="paginationPage"]');
					if (pages.length === 0) return 0;
					return parseInt(pages[pages.length - 1].textContent.trim(), 10) || 0;
				})()
			`, &lastPage),
		)
	})

	if err == nil && lastPage < 1 {
		err = fmt.Errorf("pagination elements not found")
	}
	return lastPage, err
}

func (s *Scraper) scrapePage(allocCtx context.Context, page int) ([]tile, error) {
	var tiles []tile

	err := s.retry.Do(allocCtx, fmt.Sprintf("gog-page-%d", page), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		tiles = nil
		return chromedp.Run(ctx,
			chromedp.Navigate(fmt.Sprintf("%s&page=%d", catalogURL, page)),
			chromedp.Sleep(5*time.Second),
			chromedp.Evaluate(`
				(function() {
					var results = [];
					var cards = document.querySelectorAll('[class="product-tile product-tile--grid"]');
					for (var i = 0; i < cards.length; i++) {
						var el = cards[i];

						var titleEl = el.querySelector('[selenium-id="productTitle"]');
						var priceEl = el.querySelector('[selenium-id="productPrice"]');

						var img = '';
						var sources = el.querySelectorAll('[type="image/jpeg"]');
						if (sources.length > 0) {
							var srcset = sources[0].getAttribute('srcset') ||
							             sources[0].getAttribute('lazyload') || '';
							img = srcset.split(',')[0].trim();
						}

						results.push({
							id:    el.getAttribute('data-product-id') || '',
							name:  titleEl ? titleEl.textContent.trim() : '',
							href:  el.getAttribute('href') || '',
							img:   img,
							price: priceEl ? priceEl.textContent.trim() : ''
						});
					}
					return results;
				})()
			`, &tiles),
		)
	})

	return tiles, err
}
