package storage

import "github.com/lborgatow/games-scraping/models"

// DetailStore persists the append-only detail document.
type DetailStore interface {
	LoadDetails() ([]models.DetailRecord, error)
	SaveDetails(records []models.DetailRecord) error
}

// CatalogStore persists the cross-run catalog document.
type CatalogStore interface {
	LoadCatalog() (models.Catalog, error)
	SaveCatalog(catalog models.Catalog) error
}

// CatalogWriter is a secondary sink the folded catalog can be mirrored to.
type CatalogWriter interface {
	Write(catalog models.Catalog) error
	Close() error
}
