package services

import (
	"github.com/lborgatow/games-scraping/models"
)

// Dedupe removes exact full-field duplicates from a result set, preserving
// order. The first occurrence wins. Dedupe is idempotent.
func Dedupe(offers []models.Offer) []models.Offer {
	seen := make(map[string]struct{}, len(offers))
	result := make([]models.Offer, 0, len(offers))

	for _, o := range offers {
		key := o.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, o)
	}

	return result
}

// MergeAppsByID concatenates two app lists with overlapping id spaces into
// one list unique by id. Entries from a take priority on collisions; b only
// contributes ids not already seen.
func MergeAppsByID(a, b []models.App) []models.App {
	seen := make(map[string]struct{}, len(a)+len(b))
	result := make([]models.App, 0, len(a)+len(b))

	for _, app := range a {
		if _, dup := seen[app.ID]; dup {
			continue
		}
		seen[app.ID] = struct{}{}
		result = append(result, app)
	}
	for _, app := range b {
		if _, dup := seen[app.ID]; dup {
			continue
		}
		seen[app.ID] = struct{}{}
		result = append(result, app)
	}

	return result
}
