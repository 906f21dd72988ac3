package services

import (
	"reflect"
	"testing"

	"github.com/lborgatow/games-scraping/models"
)

func offer(id, name string) models.Offer {
	return models.Offer{
		ID:     id,
		Name:   name,
		URL:    "https://store.example/" + id,
		Prices: models.ZeroTriple(),
	}
}

func TestDedupeRemovesExactDuplicates(t *testing.T) {
	offers := []models.Offer{
		offer("1", "Alpha"),
		offer("2", "Beta"),
		offer("1", "Alpha"),
		offer("3", "Gamma"),
		offer("2", "Beta"),
	}

	got := Dedupe(offers)
	if len(got) != 3 {
		t.Fatalf("got %d offers, want 3", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "2" || got[2].ID != "3" {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestDedupeKeepsDifferingFields(t *testing.T) {
	a := offer("1", "Alpha")
	b := offer("1", "Alpha")
	b.Prices = models.UnavailableTriple()

	got := Dedupe([]models.Offer{a, b})
	if len(got) != 2 {
		t.Errorf("offers differing only in prices: got %d, want 2", len(got))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	offers := []models.Offer{
		offer("1", "Alpha"),
		offer("1", "Alpha"),
		offer("2", "Beta"),
	}

	once := Dedupe(offers)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe not idempotent: %v != %v", once, twice)
	}
}

func TestMergeAppsByID(t *testing.T) {
	a := []models.App{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}, {ID: "1", Name: "Alpha dup"}}
	b := []models.App{{ID: "2", Name: "Beta from b"}, {ID: "3", Name: "Gamma"}}

	got := MergeAppsByID(a, b)

	if len(got) != 3 {
		t.Fatalf("got %d apps, want 3", len(got))
	}
	seen := make(map[string]string)
	for _, app := range got {
		if _, dup := seen[app.ID]; dup {
			t.Errorf("id %s appears twice", app.ID)
		}
		seen[app.ID] = app.Name
	}
	if seen["2"] != "Beta" {
		t.Errorf("id collision: got %q, want first list's %q", seen["2"], "Beta")
	}
	if seen["3"] != "Gamma" {
		t.Errorf("second list id lost: %v", seen)
	}
}

func TestMergeAppsByIDNonOverlapping(t *testing.T) {
	a := []models.App{{ID: "1", Name: "Alpha"}}
	b := []models.App{{ID: "2", Name: "Beta"}}

	got := MergeAppsByID(a, b)
	if len(got) != 2 {
		t.Errorf("got %d apps, want 2", len(got))
	}
}

func TestKeepName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Half-Life 2", true},
		{"Half-Life 2: Demo", false},
		{"Original Soundtrack Collection", false},
		{"Dedicated Server Tools", false},
		{"Betamax Chronicles", false}, // substring match, same as the stores' listings
		{"Portal", true},
	}

	for _, tt := range tests {
		if got := KeepName(tt.name); got != tt.want {
			t.Errorf("KeepName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
