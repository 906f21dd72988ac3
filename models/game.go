package models

import "strings"

// Sentinel strings carried over into the persisted documents when a detail
// field could not be obtained.
const (
	NoDescription = "Sem descrição."
	NoImage       = "Sem imagem"
)

// App is a bare Steam application list entry, before any pricing or detail
// is known.
type App struct {
	ID   string `json:"appid"`
	Name string `json:"name"`
}

// RawOffer is what a retailer adapter extracts from a single listing element:
// identifiers and text exactly as they appear on the page, prices unparsed.
type RawOffer struct {
	ID          string
	Name        string
	URL         string
	RawPrice    string
	RawDiscount string
	Image       string
	Genres      []string
	Description string
}

// Offer is a normalized per-retailer listing, ready for catalog assembly.
type Offer struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Image       string      `json:"img"`
	Genres      []string    `json:"genres,omitempty"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"href"`
	Prices      PriceTriple `json:"prices"`
}

// Key returns a string identity over every field of the offer, used for
// exact-duplicate removal.
func (o Offer) Key() string {
	return strings.Join([]string{
		o.ID, o.Name, o.Image, strings.Join(o.Genres, ","), o.Description, o.URL,
		o.Prices.Initial.String(), o.Prices.Discount.String(), o.Prices.Final.String(),
	}, "\x1f")
}

// DetailRecord is the enriched per-item metadata fetched once per id and kept
// forever in the detail document. Once written for an id it is never
// overwritten.
type DetailRecord struct {
	AppID       string   `json:"appid"`
	Type        string   `json:"type"`
	Genres      []string `json:"genres"`
	Description string   `json:"description"`
	Image       string   `json:"img"`
}

// UnavailableDetail is the record persisted for an id whose detail fetch
// permanently failed, so the id is never selected for re-fetching.
func UnavailableDetail(appID string) DetailRecord {
	return DetailRecord{
		AppID:       appID,
		Type:        Unavailable,
		Genres:      []string{},
		Description: NoDescription,
		Image:       NoImage,
	}
}

// RetailerSlot is one retailer's offer inside a catalog entry. Every catalog
// entry carries exactly one slot per known retailer; retailers without a
// matching offer carry the unavailable variant.
type RetailerSlot struct {
	Shop   string      `json:"shop"`
	GameID string      `json:"gameid"`
	URL    string      `json:"href"`
	Prices PriceTriple `json:"prices"`
}

// UnavailableSlot returns the placeholder slot for a retailer that does not
// currently list the game.
func UnavailableSlot(shop string) RetailerSlot {
	return RetailerSlot{
		Shop:   shop,
		GameID: Unavailable,
		URL:    Unavailable,
		Prices: UnavailableTriple(),
	}
}

// Unavailable reports whether the slot is the placeholder variant.
func (s RetailerSlot) Unavailable() bool {
	return s.GameID == Unavailable && s.URL == Unavailable
}

// CatalogEntry aggregates one game across every retailer. The map key in
// Catalog is the game name, which is also the merge key.
type CatalogEntry struct {
	Genres      []string       `json:"genres"`
	Description string         `json:"description"`
	Image       string         `json:"img"`
	Shops       []RetailerSlot `json:"shops"`
}

// Clone returns a deep copy of the entry.
func (e CatalogEntry) Clone() CatalogEntry {
	c := e
	c.Genres = append([]string(nil), e.Genres...)
	c.Shops = append([]RetailerSlot(nil), e.Shops...)
	return c
}

// Catalog is the durable cross-run artifact: game name -> entry.
type Catalog map[string]CatalogEntry

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for name, entry := range c {
		out[name] = entry.Clone()
	}
	return out
}
