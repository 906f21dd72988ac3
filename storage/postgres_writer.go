package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/lborgatow/games-scraping/models"
)

// PostgresWriter mirrors the folded catalog into PostgreSQL so it can be
// queried relationally. The JSON documents stay the source of truth; this
// sink is rebuilt from scratch on every run.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	// Price columns are TEXT: the unavailable sentinel must survive the
	// round trip, and NUMERIC cannot hold it.
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			name        TEXT PRIMARY KEY,
			genres      TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			img         TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS game_offers (
			id            SERIAL PRIMARY KEY,
			game_name     TEXT NOT NULL REFERENCES games(name) ON DELETE CASCADE,
			shop          VARCHAR(50) NOT NULL,
			gameid        TEXT NOT NULL,
			href          TEXT NOT NULL,
			initial_price TEXT NOT NULL,
			discount      TEXT NOT NULL,
			final_price   TEXT NOT NULL,
			UNIQUE (game_name, shop)
		);

		CREATE INDEX IF NOT EXISTS idx_game_offers_shop ON game_offers(shop);
	`)
	return err
}

// Clear deletes all mirrored rows.
func (pw *PostgresWriter) Clear() error {
	if _, err := pw.db.Exec("DELETE FROM games"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the mirrored catalog with the given one.
func (pw *PostgresWriter) Write(catalog models.Catalog) error {
	if len(catalog) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}

	for i := 0; i < len(names); i += batchSize {
		end := i + batchSize
		if end > len(names) {
			end = len(names)
		}
		if err := pw.insertGames(names[i:end], catalog); err != nil {
			return err
		}
	}

	for _, name := range names {
		if err := pw.insertOffers(name, catalog[name].Shops); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertGames(names []string, catalog models.Catalog) error {
	valueStrings := make([]string, 0, len(names))
	valueArgs := make([]interface{}, 0, len(names)*4)

	for idx, name := range names {
		entry := catalog[name]
		base := idx * 4
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs,
			name, strings.Join(entry.Genres, ","), entry.Description, entry.Image)
	}

	query := fmt.Sprintf(`
		INSERT INTO games (name, genres, description, img)
		VALUES %s
		ON CONFLICT (name) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert games: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) insertOffers(name string, slots []models.RetailerSlot) error {
	if len(slots) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(slots))
	valueArgs := make([]interface{}, 0, len(slots)*7)

	for idx, slot := range slots {
		base := idx * 7
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			name, slot.Shop, slot.GameID, slot.URL,
			slot.Prices.Initial.String(), slot.Prices.Discount.String(), slot.Prices.Final.String())
	}

	query := fmt.Sprintf(`
		INSERT INTO game_offers (game_name, shop, gameid, href, initial_price, discount, final_price)
		VALUES %s
		ON CONFLICT (game_name, shop) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert offers for %q: %w", name, err)
	}
	return nil
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
