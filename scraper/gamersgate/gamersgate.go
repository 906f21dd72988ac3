package gamersgate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gocolly/colly"

	"github.com/lborgatow/games-scraping/config"
	"github.com/lborgatow/games-scraping/models"
	"github.com/lborgatow/games-scraping/services"
	"github.com/lborgatow/games-scraping/utils"
)

const (
	baseURL    = "https://www.gamersgate.com"
	catalogURL = baseURL + "/games/?platform=pc&platform=mac&platform=linux&dlc=on&sort=alphabetically&per_page=90"

	// Shop is the retailer name this adapter contributes to the catalog.
	Shop = "gamersgate"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Scraper walks the GamersGate catalog. The pages are static HTML, so they
// are fetched concurrently with colly instead of a headless browser.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger

	mu       sync.Mutex
	offers   []models.Offer
	attempts map[string]int
}

// New creates a ready-to-use GamersGate scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		attempts: make(map[string]int),
	}
}

// Scrape discovers the last catalog page and fetches every page, collecting
// the normalized offers under a lock.
func (s *Scraper) Scrape(ctx context.Context) ([]models.Offer, error) {
	lastPage, err := s.lastPage()
	if err != nil {
		return nil, fmt.Errorf("gamersgate: last page: %w", err)
	}
	s.logger.Info("[gamersgate] %d pages found", lastPage)

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.Async(true),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(s.cfg.HTTPTimeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*gamersgate*",
		Parallelism: s.cfg.MaxConcurrency,
	}); err != nil {
		return nil, fmt.Errorf("gamersgate: limit rule: %w", err)
	}

	c.OnHTML("div.column.catalog-item.product--item", func(e *colly.HTMLElement) {
		offer, ok := s.extract(e)
		if !ok {
			return
		}
		s.mu.Lock()
		s.offers = append(s.offers, offer)
		s.mu.Unlock()
	})

	c.OnScraped(func(r *colly.Response) {
		s.mu.Lock()
		total := len(s.offers)
		s.mu.Unlock()
		s.logger.Info("[gamersgate] Page %s processed — %d offers so far",
			r.Request.URL.Query().Get("page"), total)
	})

	c.OnError(func(r *colly.Response, err error) {
		url := r.Request.URL.String()
		s.mu.Lock()
		s.attempts[url]++
		tries := s.attempts[url]
		s.mu.Unlock()

		if tries < s.cfg.MaxRetries {
			s.logger.Warn("[gamersgate] %s failed (attempt %d): %v — retrying", url, tries, err)
			_ = r.Request.Retry()
			return
		}
		s.logger.Error("[gamersgate] %s failed after %d attempts: %v", url, tries, err)
	})

	for page := 1; page <= lastPage; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.Visit(fmt.Sprintf("%s&page=%d", catalogURL, page)); err != nil {
			s.logger.Warn("[gamersgate] Could not enqueue page %d: %v", page, err)
		}
	}
	c.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offers, nil
}

// extract converts one catalog card into an offer. Cards without a sale name
// or matching an excluded keyword are skipped.
func (s *Scraper) extract(e *colly.HTMLElement) (models.Offer, bool) {
	name := e.ChildAttr("div.catalog-item--title a", "title")
	if name == "" || !services.KeepName(name) {
		return models.Offer{}, false
	}

	raw := models.RawOffer{
		ID:          e.Attr("data-id"),
		Name:        name,
		URL:         baseURL + e.ChildAttr("div.catalog-item--title a", "href"),
		Image:       e.ChildAttr("div.catalog-item--image img", "src"),
		RawDiscount: e.ChildText("li.catalog-item--product-label-v2.product--label-discount"),
		RawPrice:    e.ChildText("div.catalog-item--price span"),
	}
	rawInitial := e.ChildText("div.catalog-item--full-price")

	return models.Offer{
		ID:     raw.ID,
		Name:   raw.Name,
		Image:  raw.Image,
		URL:    raw.URL,
		Prices: services.ParseTripleWithInitial(rawInitial, raw.RawDiscount, raw.RawPrice),
	}, true
}

// lastPage fetches the first catalog page synchronously and reads the final
// page number from the paginator.
func (s *Scraper) lastPage() (int, error) {
	lastPage := 0

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(s.cfg.HTTPTimeout)

	c.OnHTML("div.catalog-paginator", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.DOM.Find("li").Last().Text())
		if n, err := strconv.Atoi(text); err == nil {
			lastPage = n
		}
	})

	if err := c.Visit(catalogURL); err != nil {
		return 0, err
	}
	if lastPage < 1 {
		return 0, fmt.Errorf("paginator not found")
	}
	return lastPage, nil
}
