package nuuvem

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
	catalogURL = "https://www.nuuvem.com/br-pt/catalog/platforms/pc/types/games/sort/title/sort-mode/asc"

	// Shop is the retailer name this adapter contributes to the catalog.
	Shop = "nuuvem"
)

// Scraper walks the Nuuvem PC games catalog with a headless browser.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryPolicy
}

// New creates a ready-to-use Nuuvem scraper.
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

type card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"href"`
	Image    string `json:"img"`
	Genre    string `json:"genre"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
}

// Scrape paginates through the catalog and returns the normalized offers.
func (s *Scraper) Scrape(ctx context.Context) ([]models.Offer, error) {
	allocCtx, cancel := browser.Allocator(ctx, s.cfg.ChromeBin)
	defer cancel()

	lastPage, err := s.lastPage(allocCtx)
	if err != nil {
		return nil, fmt.Errorf("nuuvem: last page: %w", err)
	}
	s.logger.Info("[nuuvem] %d pages found", lastPage)

	var offers []models.Offer
	for page := 1; page <= lastPage; page++ {
		cards, err := s.scrapePage(allocCtx, page)
		if err != nil {
			s.logger.Error("[nuuvem] Page %d failed: %v", page, err)
			continue
		}

		for _, c := range cards {
			// No price button means the game is not currently sold.
			if c.Price == "" {
				continue
			}
			if !services.KeepName(c.Name) {
				continue
			}
			offers = append(offers, models.Offer{
				ID:     c.ID,
				Name:   c.Name,
				Image:  c.Image,
				Genres: []string{c.Genre},
				URL:    c.URL,
				Prices: services.ParseTriple(c.Price, c.Discount),
			})
		}
		s.logger.Info("[nuuvem] Page %d processed — %d offers so far", page, len(offers))
	}

	return offers, nil
}

// lastPage reads the final page number from the catalog's pagination widget.
func (s *Scraper) lastPage(allocCtx context.Context) (int, error) {
	var lastPage int

	err := s.retry.Do(allocCtx, "nuuvem-last-page", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(catalogURL),
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(`
				(function() {
					var pagination = document.querySelector('.pagination');
					if (!pagination) return 0;
					var links = pagination.querySelectorAll('a');
					if (links.length < 2) return 0;
					return parseInt(links[links.length - 2].textContent.trim(), 10) || 0;
				})()
			`, &lastPage),
		)
	})

	if err == nil && lastPage < 1 {
		err = fmt.Errorf("pagination widget not found")
	}
	return lastPage, err
}

// scrapePage extracts every product card of one catalog page.
func (s *Scraper) scrapePage(allocCtx context.Context, page int) ([]card, error) {
	var cards []card

	err := s.retry.Do(allocCtx, fmt.Sprintf("nuuvem-page-%d", page), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		cards = nil
		return chromedp.Run(ctx,
			chromedp.Navigate(fmt.Sprintf("%s/page/%d", catalogURL, page)),
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(`
				(function() {
					var results = [];
					var cards = document.querySelectorAll('[data-component="product-card"]');
					for (var i = 0; i < cards.length; i++) {
						var el = cards[i];
						var wrapper = el.querySelector('[class="product-card--wrapper"]');
						if (!wrapper) continue;

						var priceEl = wrapper.querySelector('[class="product-button__label"]');
						var discountEl = el.querySelector('[class="product-discount"]');
						var imgEl = wrapper.querySelector('img');

						results.push({
							id:       el.getAttribute('data-track-product-sku') || '',
							name:     wrapper.getAttribute('title') || '',
							href:     wrapper.getAttribute('href') || '',
							img:      imgEl ? (imgEl.getAttribute('src') || '') : '',
							genre:    el.getAttribute('data-track-product-genre') || '',
							price:    priceEl ? priceEl.textContent.trim() : '',
							discount: discountEl ? discountEl.textContent.trim() : ''
						});
					}
					return results;
				})()
			`, &cards),
		)
	})

	return cards, err
}
