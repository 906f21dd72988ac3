package services

import (
	"github.com/lborgatow/games-scraping/models"
	"github.com/lborgatow/games-scraping/utils"
)

// CatalogMerger reconciles per-retailer result sets into the unified catalog
// and folds each run's snapshot into the previously persisted one. The
// retailer list fixes both the slot order inside every entry and which
// retailers count as "scraped this run" during the fold.
type CatalogMerger struct {
	logger    *utils.Logger
	retailers []string
}

// NewCatalogMerger creates a merger over the given retailers, in iteration
// order.
func NewCatalogMerger(logger *utils.Logger, retailers []string) *CatalogMerger {
	return &CatalogMerger{logger: logger, retailers: retailers}
}

// Retailers returns the retailer iteration order.
func (m *CatalogMerger) Retailers() []string {
	return append([]string(nil), m.retailers...)
}

// Build converts per-retailer offers into a fresh name-keyed catalog.
//
// The first offer seen under a name seeds the entry's genres, description and
// image; every offer contributes one retailer slot. Afterwards each entry is
// padded with unavailable slots so it holds exactly one slot per retailer.
// Entries that end up with more slots than retailers are two distinct games
// colliding on one name; they are dropped rather than persisted. This is a
// best-effort heuristic, not a guaranteed disambiguation.
func (m *CatalogMerger) Build(shops map[string][]models.Offer) models.Catalog {
	catalog := make(models.Catalog)

	for _, shop := range m.retailers {
		for _, offer := range shops[shop] {
			slot := models.RetailerSlot{
				Shop:   shop,
				GameID: offer.ID,
				URL:    offer.URL,
				Prices: offer.Prices,
			}

			entry, ok := catalog[offer.Name]
			if !ok {
				genres := offer.Genres
				if len(genres) == 0 {
					genres = []string{models.Unavailable}
				}
				description := offer.Description
				if description == "" {
					description = models.NoDescription
				}
				entry = models.CatalogEntry{
					Genres:      append([]string(nil), genres...),
					Description: description,
					Image:       offer.Image,
				}
			}
			entry.Shops = append(entry.Shops, slot)
			catalog[offer.Name] = entry
		}
	}

	for name, entry := range catalog {
		present := make(map[string]struct{}, len(entry.Shops))
		for _, slot := range entry.Shops {
			present[slot.Shop] = struct{}{}
		}
		for _, shop := range m.retailers {
			if _, ok := present[shop]; !ok {
				entry.Shops = append(entry.Shops, models.UnavailableSlot(shop))
			}
		}
		catalog[name] = entry
	}

	for name, entry := range catalog {
		if len(entry.Shops) > len(m.retailers) {
			m.logger.Warn("[catalog] Dropping %q: %d slots for %d retailers (name collision)",
				name, len(entry.Shops), len(m.retailers))
			delete(catalog, name)
		}
	}

	return catalog
}

// Fold merges the freshly built catalog into the previously persisted one and
// returns a new catalog; neither argument is mutated.
//
// Games present in both keep their old entry, with only the slots of
// retailers present in the fresh entry replaced. Games only in the fresh
// catalog are inserted wholesale. Games only in the old catalog keep their
// name, genres, description and image, but every slot belonging to a retailer
// scraped this run is marked unavailable; slots of retailers outside this
// run's set keep their prior values.
func (m *CatalogMerger) Fold(fresh, previous models.Catalog) models.Catalog {
	next := previous.Clone()

	scraped := make(map[string]struct{}, len(m.retailers))
	for _, shop := range m.retailers {
		scraped[shop] = struct{}{}
	}

	for name, freshEntry := range fresh {
		oldEntry, ok := next[name]
		if !ok {
			next[name] = freshEntry.Clone()
			continue
		}

		replacements := make(map[string]models.RetailerSlot, len(freshEntry.Shops))
		for _, slot := range freshEntry.Shops {
			replacements[slot.Shop] = slot
		}
		for i, slot := range oldEntry.Shops {
			if newSlot, ok := replacements[slot.Shop]; ok {
				oldEntry.Shops[i] = newSlot
				delete(replacements, slot.Shop)
			}
		}
		// A retailer added since the old entry was written gets appended in
		// retailer order.
		for _, shop := range m.retailers {
			if newSlot, ok := replacements[shop]; ok {
				oldEntry.Shops = append(oldEntry.Shops, newSlot)
			}
		}
		next[name] = oldEntry
	}

	for name, entry := range next {
		if _, stillListed := fresh[name]; stillListed {
			continue
		}
		for i, slot := range entry.Shops {
			if _, ran := scraped[slot.Shop]; ran {
				entry.Shops[i] = models.UnavailableSlot(slot.Shop)
			}
		}
		next[name] = entry
	}

	return next
}
