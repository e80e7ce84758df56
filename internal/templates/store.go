package templates

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"colony/internal/layout"
	"colony/internal/log"
)

// ErrNotFound reports a template name with no stored entry.
var ErrNotFound = errors.New("template not found")

// Info is the indexed metadata for one stored template.
type Info struct {
	Name      string
	Comment   string
	PlanetID  int
	PinCount  int
	UpdatedAt time.Time
}

// Store is an sqlite-backed library of raw layout records. The body is kept
// verbatim so a stored template always re-parses exactly as imported; the
// metadata columns exist only for listing without decoding every body.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS templates (
	name       TEXT PRIMARY KEY,
	comment    TEXT NOT NULL DEFAULT '',
	planet_id  INTEGER NOT NULL DEFAULT 0,
	pin_count  INTEGER NOT NULL DEFAULT 0,
	body       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open opens (creating if needed) a template store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping template store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create template schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a raw layout record under the given name, replacing any
// previous entry. The body must decode as a layout record; the extracted
// metadata feeds the listing index.
func (s *Store) Save(name string, body []byte) error {
	rec, err := layout.Decode(body)
	if err != nil {
		return fmt.Errorf("template body rejected: %w", err)
	}

	planetID := 0
	if rec.PlanetID != nil {
		planetID = *rec.PlanetID
	}

	_, err = s.db.Exec(`
		INSERT INTO templates (name, comment, planet_id, pin_count, body, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			comment    = excluded.comment,
			planet_id  = excluded.planet_id,
			pin_count  = excluded.pin_count,
			body       = excluded.body,
			updated_at = CURRENT_TIMESTAMP`,
		name, rec.Comment, planetID, len(rec.Pins), string(body))
	if err != nil {
		return fmt.Errorf("failed to save template %q: %w", name, err)
	}
	log.Info("Template saved", "name", name, "pins", len(rec.Pins))
	return nil
}

// Load returns the stored raw record body for a template.
func (s *Store) Load(name string) ([]byte, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM templates WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template %q: %w", name, err)
	}
	return []byte(body), nil
}

// List returns metadata for every stored template, ordered by name.
func (s *Store) List() ([]Info, error) {
	rows, err := s.db.Query(`
		SELECT name, comment, planet_id, pin_count, updated_at
		FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Name, &info.Comment, &info.PlanetID, &info.PinCount, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a stored template.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM templates WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete template %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}
