package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lborgatow/games-scraping/models"
)

// JSONStore keeps the two durable documents as JSON files: the detail
// document (array of records) and the catalog document (name -> entry map).
// Documents are read whole at run start and written whole at run end.
//
// Writes go to a temp file in the same directory followed by a rename, so a
// crash mid-write can never corrupt the previous valid document.
type JSONStore struct {
	detailsPath string
	catalogPath string
}

// NewJSONStore creates a store over the given file paths. Intermediate
// directories are created automatically.
func NewJSONStore(detailsPath, catalogPath string) (*JSONStore, error) {
	for _, p := range []string{detailsPath, catalogPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("store: create data dir for %q: %w", p, err)
		}
	}
	return &JSONStore{detailsPath: detailsPath, catalogPath: catalogPath}, nil
}

// LoadDetails reads the detail document. A missing file is an empty document,
// not an error: the first run starts from nothing.
func (s *JSONStore) LoadDetails() ([]models.DetailRecord, error) {
	var records []models.DetailRecord
	if err := readJSON(s.detailsPath, &records); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: load details: %w", err)
	}
	return records, nil
}

// SaveDetails atomically replaces the detail document.
func (s *JSONStore) SaveDetails(records []models.DetailRecord) error {
	if records == nil {
		records = []models.DetailRecord{}
	}
	if err := writeJSON(s.detailsPath, records); err != nil {
		return fmt.Errorf("store: save details: %w", err)
	}
	return nil
}

// LoadCatalog reads the catalog document. A missing file is an empty catalog.
func (s *JSONStore) LoadCatalog() (models.Catalog, error) {
	var catalog models.Catalog
	if err := readJSON(s.catalogPath, &catalog); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Catalog{}, nil
		}
		return nil, fmt.Errorf("store: load catalog: %w", err)
	}
	if catalog == nil {
		catalog = models.Catalog{}
	}
	return catalog, nil
}

// SaveCatalog atomically replaces the catalog document.
func (s *JSONStore) SaveCatalog(catalog models.Catalog) error {
	if catalog == nil {
		catalog = models.Catalog{}
	}
	if err := writeJSON(s.catalogPath, catalog); err != nil {
		return fmt.Errorf("store: save catalog: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %q: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %q: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp for %q: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp for %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %q: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %q: %w", path, err)
	}
	return nil
}
