package services

import (
	"sync"

	"github.com/lborgatow/games-scraping/models"
)

// DetailCache is the durable id -> DetailRecord mapping. It grows append-only
// within a run and across runs: an id recorded once, even as unavailable, is
// never fetched again. Safe for concurrent Record calls.
type DetailCache struct {
	mu      sync.RWMutex
	records []models.DetailRecord
	index   map[string]int
}

// NewDetailCache builds the cache from the previously persisted records.
// Duplicate ids in the document keep their first record.
func NewDetailCache(records []models.DetailRecord) *DetailCache {
	c := &DetailCache{
		records: make([]models.DetailRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		c.Record(r)
	}
	return c
}

// MissingIDs returns the ids of the current run that have no recorded
// detail yet, deduplicated, in first-seen order. The result is always a
// subset of current and disjoint from the known ids.
func (c *DetailCache) MissingIDs(current []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(current))
	var missing []string
	for _, id := range current {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, known := c.index[id]; !known {
			missing = append(missing, id)
		}
	}
	return missing
}

// Record appends a detail for a new id and reports whether it was stored.
// An id already present is a no-op: details are immutable once written.
func (c *DetailCache) Record(detail models.DetailRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, known := c.index[detail.AppID]; known {
		return false
	}
	c.index[detail.AppID] = len(c.records)
	c.records = append(c.records, detail)
	return true
}

// Get returns the recorded detail for an id.
func (c *DetailCache) Get(id string) (models.DetailRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return models.DetailRecord{}, false
	}
	return c.records[i], true
}

// Records returns a copy of every record, in insertion order, for
// persistence.
func (c *DetailCache) Records() []models.DetailRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.DetailRecord(nil), c.records...)
}

// Len returns the number of recorded ids.
func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// JoinDetails merges cached metadata into each offer by item id and keeps
// only offers whose recorded category is an actual game. Offers with no
// recorded detail are dropped: they were never resolvable.
func JoinDetails(offers []models.Offer, cache *DetailCache) []models.Offer {
	result := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		detail, ok := cache.Get(o.ID)
		if !ok || detail.Type != "game" {
			continue
		}
		o.Image = detail.Image
		o.Genres = append([]string(nil), detail.Genres...)
		o.Description = detail.Description
		result = append(result, o)
	}
	return result
}
