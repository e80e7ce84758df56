package recipes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"colony/internal/log"
	"colony/internal/registry"
)

// ErrNoRecipes reports that zero usable rows were loaded across all sources.
// The generator cannot function without at least some recipes.
var ErrNoRecipes = errors.New("no usable recipes loaded")

// Recipe maps one output commodity to its inputs and production tier.
type Recipe struct {
	Output int
	Inputs []int
	Tier   int
}

// Table is the recipe dependency table, immutable after load.
type Table struct {
	recipes map[int]Recipe
}

// Lookup returns the recipe producing the given commodity.
func (t *Table) Lookup(output int) (Recipe, bool) {
	r, ok := t.recipes[output]
	return r, ok
}

// Len returns the number of loaded recipes.
func (t *Table) Len() int {
	return len(t.recipes)
}

// Source describes one delimited recipe file: how many input columns each
// row carries and which production tier its outputs belong to.
type Source struct {
	Path   string
	Inputs int
	Tier   int
}

// DefaultSources returns the standard four-file layout under dir.
func DefaultSources(dir string) []Source {
	return []Source{
		{Path: filepath.Join(dir, "P1.csv"), Inputs: 1, Tier: 1},
		{Path: filepath.Join(dir, "P2.csv"), Inputs: 2, Tier: 2},
		{Path: filepath.Join(dir, "P3.csv"), Inputs: 3, Tier: 3},
		{Path: filepath.Join(dir, "P4.csv"), Inputs: 3, Tier: 4},
	}
}

// Load reads the recipe sources in order, resolving every commodity name
// through the registry. Rows with unresolvable names are dropped with a
// warning; a duplicate output overwrites the earlier entry (last-loaded
// wins). Load fails only when nothing usable was loaded at all.
func Load(reg *registry.Registry, sources []Source) (*Table, error) {
	folder := cases.Fold()
	byName := make(map[string]int)
	for id, name := range reg.Commodities() {
		byName[folder.String(strings.TrimSpace(name))] = id
	}
	lookup := func(name string) (int, bool) {
		id, ok := byName[folder.String(name)]
		return id, ok
	}

	table := &Table{recipes: make(map[int]Recipe)}
	for _, src := range sources {
		if err := loadSource(src, lookup, table); err != nil {
			log.Error("Recipe source unreadable, continuing with remaining sources",
				"path", src.Path, "error", err)
		}
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("%w (checked %d sources)", ErrNoRecipes, len(sources))
	}
	log.Info("Recipe table loaded", "recipes", table.Len())
	return table, nil
}

func loadSource(src Source, lookup func(string) (int, bool), table *Table) error {
	f, err := os.Open(src.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	// Header row.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to read header: %w", err)
	}

	line := 1
	for {
		row, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("Skipping unreadable recipe row", "path", src.Path, "line", line, "error", err)
			continue
		}
		if len(row) < src.Inputs+1 {
			log.Warn("Skipping recipe row with insufficient columns",
				"path", src.Path, "line", line, "columns", len(row))
			continue
		}

		outputName := strings.TrimSpace(row[src.Inputs])
		if outputName == "" {
			log.Warn("Skipping recipe row with blank output", "path", src.Path, "line", line)
			continue
		}
		outputID, ok := lookup(outputName)
		if !ok {
			log.Warn("Dropping recipe with unresolvable output name",
				"path", src.Path, "line", line, "output", outputName)
			continue
		}

		var inputIDs []int
		usable := true
		for _, cell := range row[:src.Inputs] {
			name := strings.TrimSpace(cell)
			if name == "" {
				continue // blank input cells are ignored
			}
			id, ok := lookup(name)
			if !ok {
				log.Warn("Dropping recipe with unresolvable input name",
					"path", src.Path, "line", line, "output", outputName, "input", name)
				usable = false
				break
			}
			inputIDs = append(inputIDs, id)
		}
		if !usable {
			continue
		}

		if _, exists := table.recipes[outputID]; exists {
			log.Warn("Duplicate recipe output, overwriting earlier entry",
				"path", src.Path, "line", line, "output", outputName, "id", outputID)
		}
		table.recipes[outputID] = Recipe{Output: outputID, Inputs: inputIDs, Tier: src.Tier}
	}
	return nil
}
