// Package cache persists per-mall keyword search results in sqlite so that
// repeated searches inside the TTL window skip the upstream calls.
package cache

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"mallscout/pkg/models"
)

type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func New(dbPath string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS search_results (
			mall TEXT NOT NULL,
			keyword TEXT NOT NULL,
			listings TEXT NOT NULL,
			searched_at DATETIME NOT NULL,
			PRIMARY KEY (mall, keyword)
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Get returns the cached listings for one mall and keyword, or false when
// absent or expired. An empty cached slice is a valid hit: a mall that had
// no results recently will not be re-scraped inside the TTL either.
func (s *Store) Get(mall models.MallID, keyword string) ([]models.Listing, bool) {
	var data string
	var searchedAt time.Time

	err := s.db.QueryRow(
		`SELECT listings, searched_at FROM search_results WHERE mall = ? AND keyword = ?`,
		string(mall), keyword,
	).Scan(&data, &searchedAt)
	if err != nil {
		return nil, false
	}

	if time.Since(searchedAt) > s.ttl {
		return nil, false
	}

	var listings []models.Listing
	if err := json.Unmarshal([]byte(data), &listings); err != nil {
		log.Printf("Cache: failed to unmarshal listings %s/%q: %v", mall, keyword, err)
		return nil, false
	}

	return listings, true
}

func (s *Store) Set(mall models.MallID, keyword string, listings []models.Listing) {
	data, err := json.Marshal(listings)
	if err != nil {
		log.Printf("Cache: failed to marshal listings %s/%q: %v", mall, keyword, err)
		return
	}

	_, err = s.db.Exec(
		`INSERT INTO search_results (mall, keyword, listings, searched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(mall, keyword)
		 DO UPDATE SET listings = excluded.listings, searched_at = excluded.searched_at`,
		string(mall), keyword, string(data), time.Now(),
	)
	if err != nil {
		log.Printf("Cache: failed to store listings %s/%q: %v", mall, keyword, err)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
