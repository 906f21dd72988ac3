package services

import (
	"sync"
	"testing"

	"github.com/lborgatow/games-scraping/models"
)

func detail(id string) models.DetailRecord {
	return models.DetailRecord{
		AppID:       id,
		Type:        "game",
		Genres:      []string{"Action"},
		Description: "desc-" + id,
		Image:       "img-" + id,
	}
}

func TestMissingIDs(t *testing.T) {
	cache := NewDetailCache([]models.DetailRecord{detail("1"), detail("2")})

	missing := cache.MissingIDs([]string{"2", "3", "4", "3"})

	if len(missing) != 2 {
		t.Fatalf("got %v, want [3 4]", missing)
	}
	for _, id := range missing {
		if _, known := cache.Get(id); known {
			t.Errorf("missing id %s is already known", id)
		}
	}
}

func TestMissingIDsSubsetOfCurrent(t *testing.T) {
	cache := NewDetailCache([]models.DetailRecord{detail("1")})
	current := map[string]struct{}{"5": {}, "6": {}}

	for _, id := range cache.MissingIDs([]string{"5", "6"}) {
		if _, ok := current[id]; !ok {
			t.Errorf("missing id %s not in current run", id)
		}
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	cache := NewDetailCache(nil)

	if !cache.Record(detail("1")) {
		t.Error("first record should store")
	}
	altered := detail("1")
	altered.Description = "changed"
	if cache.Record(altered) {
		t.Error("second record of same id should be a no-op")
	}

	got, _ := cache.Get("1")
	if got.Description != "desc-1" {
		t.Errorf("detail was overwritten: %q", got.Description)
	}
	if cache.Len() != 1 {
		t.Errorf("len = %d, want 1", cache.Len())
	}
}

func TestRecordConcurrent(t *testing.T) {
	cache := NewDetailCache(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Record(detail("same"))
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("len = %d, want exactly 1 record for a contested id", cache.Len())
	}
}

func TestEnrichmentAcrossRuns(t *testing.T) {
	// First run: empty cache, three new ids.
	cache := NewDetailCache(nil)
	ids := []string{"10", "20", "30"}

	for _, id := range cache.MissingIDs(ids) {
		cache.Record(detail(id))
	}
	if cache.Len() != 3 {
		t.Fatalf("after first run: %d records, want 3", cache.Len())
	}

	// Second run reloads from the persisted records and sees nothing new.
	reloaded := NewDetailCache(cache.Records())
	if missing := reloaded.MissingIDs(ids); len(missing) != 0 {
		t.Errorf("second run missing ids = %v, want none", missing)
	}
}

func TestUnavailableDetailStopsRefetching(t *testing.T) {
	cache := NewDetailCache(nil)
	cache.Record(models.UnavailableDetail("broken"))

	if missing := cache.MissingIDs([]string{"broken"}); len(missing) != 0 {
		t.Errorf("permanently failed id selected again: %v", missing)
	}
}

func TestJoinDetails(t *testing.T) {
	cache := NewDetailCache([]models.DetailRecord{
		detail("1"),
		{AppID: "2", Type: models.Unavailable, Genres: []string{}},
	})

	offers := []models.Offer{
		{ID: "1", Name: "Alpha", Prices: models.ZeroTriple()},
		{ID: "2", Name: "Broken", Prices: models.ZeroTriple()},
		{ID: "3", Name: "Unknown", Prices: models.ZeroTriple()},
	}

	got := JoinDetails(offers, cache)

	if len(got) != 1 {
		t.Fatalf("got %d offers, want only the real game", len(got))
	}
	if got[0].ID != "1" || got[0].Image != "img-1" || got[0].Description != "desc-1" {
		t.Errorf("detail not joined: %+v", got[0])
	}
}

func TestJoinDetailsByIDNotPosition(t *testing.T) {
	// Offers out of id order must still pick up their own detail.
	cache := NewDetailCache([]models.DetailRecord{detail("9"), detail("1")})

	offers := []models.Offer{
		{ID: "9", Name: "Last", Prices: models.ZeroTriple()},
		{ID: "1", Name: "First", Prices: models.ZeroTriple()},
	}

	got := JoinDetails(offers, cache)
	if len(got) != 2 {
		t.Fatalf("got %d offers, want 2", len(got))
	}
	if got[0].Image != "img-9" || got[1].Image != "img-1" {
		t.Errorf("details joined by position, not id: %+v", got)
	}
}
