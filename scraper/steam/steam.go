package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lborgatow/games-scraping/config"
	"github.com/lborgatow/games-scraping/models"
	"github.com/lborgatow/games-scraping/services"
	"github.com/lborgatow/games-scraping/utils"
)

const (
	appListURL1   = "http://api.steampowered.com/ISteamApps/GetAppList/v0002/"
	appListURL2   = "http://api.steampowered.com/ISteamApps/GetAppList/v2/"
	appDetailsURL = "https://store.steampowered.com/api/appdetails"
	storeAppURL   = "https://store.steampowered.com/app/"

	// Shop is the retailer name this adapter contributes to the catalog.
	Shop = "steam"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrTransient marks a fetch that returned no usable payload (non-200 status
// or empty body). Callers retry it; the limiter paces the attempts.
var ErrTransient = errors.New("steam: transient fetch failure")

// Client talks to the Steam price/detail API behind the rolling-window quota.
// It never decides retry policy for detail payloads beyond what the API
// semantics force (see Detail).
type Client struct {
	cfg     *config.Config
	logger  *utils.Logger
	limiter *utils.QuotaLimiter
	http    *http.Client
}

// New creates a ready-to-use Steam API client.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		cfg:     cfg,
		logger:  logger,
		limiter: utils.NewQuotaLimiter(cfg.QuotaCalls, cfg.QuotaWindow),
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// fetchJSON performs one quota-gated GET and decodes the response into v.
func (c *Client) fetchJSON(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("steam: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("steam: get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("steam: decode response: %w", err)
	}
	return nil
}

type appListResponse struct {
	AppList struct {
		Apps []struct {
			AppID json.Number `json:"appid"`
			Name  string      `json:"name"`
		} `json:"apps"`
	} `json:"applist"`
}

// Apps fetches both app-list endpoints, filters out non-game entries and
// merges the two id spaces, the first endpoint winning collisions.
func (c *Client) Apps(ctx context.Context) ([]models.App, error) {
	retry := &utils.RetryPolicy{
		MaxAttempts: c.cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      c.logger,
	}

	var lists [2][]models.App
	for i, url := range []string{appListURL1, appListURL2} {
		var resp appListResponse
		err := retry.Do(ctx, fmt.Sprintf("steam-app-list-%d", i+1), func() error {
			resp = appListResponse{}
			return c.fetchJSON(ctx, url, &resp)
		})
		if err != nil {
			return nil, fmt.Errorf("steam: app list %d: %w", i+1, err)
		}

		apps := make([]models.App, 0, len(resp.AppList.Apps))
		for _, a := range resp.AppList.Apps {
			if a.Name == "" || !services.KeepName(a.Name) {
				continue
			}
			apps = append(apps, models.App{ID: a.AppID.String(), Name: a.Name})
		}
		lists[i] = apps
	}

	merged := services.MergeAppsByID(lists[0], lists[1])
	c.logger.Info("[steam] %d apps after merging both list endpoints", len(merged))
	return merged, nil
}

type priceOverview struct {
	Initial         int64 `json:"initial"`
	Final           int64 `json:"final"`
	DiscountPercent int64 `json:"discount_percent"`
}

type appPayload struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Prices fetches current pricing for every app, batched over the worker
// pool. The ids are cut into equal slices sized by the quota (SliceDivisor
// slices fit in one window); the ragged tail runs on the calling goroutine.
// Each batch retries until the API yields a payload, the limiter pacing the
// attempts.
func (c *Client) Prices(ctx context.Context, apps []models.App) ([]models.Offer, error) {
	nameByID := make(map[string]string, len(apps))
	ids := make([]string, 0, len(apps))
	seen := utils.NewIDSet()
	for _, app := range apps {
		if !seen.Add(app.ID) {
			continue
		}
		nameByID[app.ID] = app.Name
		ids = append(ids, app.ID)
	}

	sliceSize := len(ids) / c.cfg.SliceDivisor
	full, tail := utils.Batches(ids, sliceSize)

	var (
		mu     sync.Mutex
		offers []models.Offer
	)
	collect := func(batch []models.Offer) {
		mu.Lock()
		offers = append(offers, batch...)
		total := len(offers)
		mu.Unlock()
		c.logger.Info("[steam] %d offers processed", total)
	}

	pool := utils.NewWorkerPool(c.cfg.MaxConcurrency)
	for _, batch := range full {
		batch := batch
		pool.Submit(func() error {
			result, err := c.priceBatch(ctx, batch, nameByID)
			if err != nil {
				return err
			}
			collect(result)
			return nil
		})
	}

	if len(tail) > 0 {
		result, err := c.priceBatch(ctx, tail, nameByID)
		if err != nil {
			pool.Wait()
			return nil, err
		}
		collect(result)
	}

	if err := pool.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(offers, func(i, j int) bool { return offers[i].ID < offers[j].ID })
	return offers, nil
}

// priceBatch resolves one id slice. A transient response is retried without
// bound: the quota limiter spaces the attempts, and a batch never partially
// succeeds.
func (c *Client) priceBatch(ctx context.Context, ids []string, nameByID map[string]string) ([]models.Offer, error) {
	url := fmt.Sprintf("%s?appids=%s&cc=BR&filters=price_overview",
		appDetailsURL, strings.Join(ids, ","))

	var payload map[string]appPayload
	for {
		payload = nil
		err := c.fetchJSON(ctx, url, &payload)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Non-200, timeout and malformed body are all transient for this
		// endpoint; the limiter paces the attempts.
		c.logger.Debug("[steam] price batch retry: %v", err)
	}

	batch := make([]models.Offer, 0, len(ids))
	for id, entry := range payload {
		name, known := nameByID[id]
		if !known || !entry.Success {
			continue
		}
		var data struct {
			PriceOverview *priceOverview `json:"price_overview"`
		}
		// data is an empty array when the app has no price; skip those.
		if err := json.Unmarshal(entry.Data, &data); err != nil || data.PriceOverview == nil {
			continue
		}

		po := data.PriceOverview
		batch = append(batch, models.Offer{
			ID:     id,
			Name:   name,
			URL:    storeAppURL + id,
			Prices: services.FromCents(po.Initial, po.Final, po.DiscountPercent),
		})
	}
	return batch, nil
}

// Detail fetches the enriched metadata for a single app.
//
// Failure handling mirrors what the API actually does under load: a garbled
// body means the id is broken and is recorded unavailable; a read timeout
// means the quota tripped upstream, so the call sleeps through one full
// cooldown window and tries once more before degrading; a non-200 is
// transient and retried under the limiter.
func (c *Client) Detail(ctx context.Context, id string) models.DetailRecord {
	url := fmt.Sprintf("%s?appids=%s&cc=BR&l=pt", appDetailsURL, id)

	cooldownUsed := false
	for {
		var payload map[string]appPayload
		err := c.fetchJSON(ctx, url, &payload)
		if err == nil {
			return detailFromPayload(payload[id], id)
		}

		if ctx.Err() != nil {
			return models.UnavailableDetail(id)
		}

		switch {
		case isTimeout(err):
			if cooldownUsed {
				c.logger.Warn("[steam] detail %s timed out twice — recording unavailable", id)
				return models.UnavailableDetail(id)
			}
			cooldownUsed = true
			c.logger.Warn("[steam] detail %s timed out — cooling down %s", id, c.cfg.Cooldown)
			select {
			case <-ctx.Done():
				return models.UnavailableDetail(id)
			case <-time.After(c.cfg.Cooldown):
			}
		case errors.Is(err, ErrTransient):
			c.logger.Debug("[steam] detail %s retry: %v", id, err)
		default:
			// Malformed body: the id is permanently broken.
			c.logger.Warn("[steam] detail %s unreadable (%v) — recording unavailable", id, err)
			return models.UnavailableDetail(id)
		}
	}
}

func detailFromPayload(entry appPayload, id string) models.DetailRecord {
	if !entry.Success || len(entry.Data) == 0 {
		return models.UnavailableDetail(id)
	}

	var data struct {
		Type             string `json:"type"`
		HeaderImage      string `json:"header_image"`
		ShortDescription string `json:"short_description"`
		Genres           []struct {
			Description string `json:"description"`
		} `json:"genres"`
	}
	if err := json.Unmarshal(entry.Data, &data); err != nil {
		return models.UnavailableDetail(id)
	}

	record := models.UnavailableDetail(id)
	if data.Type != "" {
		record.Type = data.Type
	}
	if data.HeaderImage != "" {
		record.Image = data.HeaderImage
	}
	if data.ShortDescription != "" {
		record.Description = data.ShortDescription
	}
	for _, g := range data.Genres {
		record.Genres = append(record.Genres, g.Description)
	}
	return record
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
