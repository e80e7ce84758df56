package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"colony/internal/log"
)

// storeDoc is the persisted JSON shape. Identifiers are stringified so the
// file diffs cleanly and stays compatible with stores written by earlier
// versions of the tool.
type storeDoc struct {
	PinTypes    map[string]PinType      `json:"pin_types"`
	Commodities map[string]string       `json:"commodities"`
	PlanetTypes map[string]string       `json:"planet_types"`
	Settings    *settingsDoc            `json:"settings,omitempty"`
	Schematics  map[string]schematicDoc `json:"schematics,omitempty"`
}

// settingsDoc uses pointers so absent keys fall back to defaults on load.
type settingsDoc struct {
	ShowRoutes *bool `json:"show_routes,omitempty"`
	ShowLabels *bool `json:"show_labels,omitempty"`
	ShowGrid   *bool `json:"show_grid,omitempty"`
}

// schematicDoc is the legacy secondary table. Schematics share the commodity
// identifier space, so on load these entries are folded into the commodity
// table and the section removed.
type schematicDoc struct {
	Name   string `json:"name"`
	Inputs []int  `json:"inputs"`
	Output int    `json:"output"`
}

// Load reads a registry store from disk. If the store carries a legacy
// schematics section it is merged into the commodity table (legacy name wins
// on conflict) and the migrated store is saved back immediately.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry store: %w", err)
	}

	var doc storeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode registry store %s: %w", path, err)
	}

	r := New(path)
	for key, pt := range doc.PinTypes {
		id, err := strconv.Atoi(key)
		if err != nil {
			log.Warn("Skipping pin type with non-numeric id", "key", key)
			continue
		}
		r.InsertPinType(id, pt.Category, pt.Planet)
	}
	for key, name := range doc.Commodities {
		id, err := strconv.Atoi(key)
		if err != nil {
			log.Warn("Skipping commodity with non-numeric id", "key", key)
			continue
		}
		r.InsertCommodity(id, name)
	}
	for key, name := range doc.PlanetTypes {
		id, err := strconv.Atoi(key)
		if err != nil {
			log.Warn("Skipping planet type with non-numeric id", "key", key)
			continue
		}
		r.InsertPlanetType(id, name)
	}
	if doc.Settings != nil {
		s := DefaultSettings()
		if doc.Settings.ShowRoutes != nil {
			s.ShowRoutes = *doc.Settings.ShowRoutes
		}
		if doc.Settings.ShowLabels != nil {
			s.ShowLabels = *doc.Settings.ShowLabels
		}
		if doc.Settings.ShowGrid != nil {
			s.ShowGrid = *doc.Settings.ShowGrid
		}
		r.settings = s
	}

	if len(doc.Schematics) > 0 {
		migrated := 0
		for key, schem := range doc.Schematics {
			id, err := strconv.Atoi(key)
			if err != nil {
				log.Warn("Skipping legacy schematic with non-numeric id", "key", key)
				continue
			}
			if existing, ok := r.commodities[id]; ok && existing == schem.Name {
				continue
			}
			r.InsertCommodity(id, schem.Name)
			migrated++
		}
		log.Info("Migrated legacy schematics table into commodities",
			"entries", len(doc.Schematics), "changed", migrated)
		if err := r.Save(); err != nil {
			return nil, fmt.Errorf("failed to save migrated registry store: %w", err)
		}
	}

	return r, nil
}

// Save writes the registry back to its store path. The previous file is first
// copied to a timestamped backup; a failed backup is logged and does not
// block the save, a failed write propagates.
func (r *Registry) Save() error {
	if r.path == "" {
		return fmt.Errorf("registry has no backing store path")
	}

	if err := backupStore(r.path); err != nil {
		log.Warn("Registry backup failed, continuing with save", "error", err)
	}

	doc := storeDoc{
		PinTypes:    make(map[string]PinType, len(r.pinTypes)),
		Commodities: make(map[string]string, len(r.commodities)),
		PlanetTypes: make(map[string]string, len(r.planetTypes)),
		Settings: &settingsDoc{
			ShowRoutes: boolPtr(r.settings.ShowRoutes),
			ShowLabels: boolPtr(r.settings.ShowLabels),
			ShowGrid:   boolPtr(r.settings.ShowGrid),
		},
	}
	for id, pt := range r.pinTypes {
		doc.PinTypes[strconv.Itoa(id)] = pt
	}
	for id, name := range r.commodities {
		doc.Commodities[strconv.Itoa(id)] = name
	}
	for id, name := range r.planetTypes {
		doc.PlanetTypes[strconv.Itoa(id)] = name
	}

	// Map keys serialize in sorted order, so repeated saves of unchanged
	// data produce byte-identical output.
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry store: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry store %s: %w", r.path, err)
	}
	return nil
}

// backupStore copies the current store file to a timestamped location under
// a backup directory next to it. A missing store is not an error; there is
// nothing to back up on first save.
func backupStore(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer src.Close()

	backupDir := filepath.Join(filepath.Dir(path), "backup")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return err
	}

	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(backupDir, fmt.Sprintf("registry_backup_%s.json", stamp))
	dst, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	log.Debug("Registry store backed up", "path", backupPath)
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
