package generator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"colony/internal/layout"
	"colony/internal/log"
	"colony/internal/recipes"
	"colony/internal/registry"
)

// Generation defaults. The planet id is the fallback when neither anchor
// resolves to a known, non-generic planet.
const (
	DefaultPlanetID           = 2016
	DefaultCommandCenterLevel = 5
	DefaultLinkLevel          = 5
	DefaultRouteQuantity      = 3000
	PlaceholderDiameter       = 100000
)

// Structural generation failures. All carry enough context for the caller
// to correct the request and retry; none are fatal to the process.
var (
	ErrNoRecipes        = errors.New("no recipe table available")
	ErrCapacity         = errors.New("requested production units exceed slot capacity")
	ErrMissingCategory  = errors.New("registry has no processing-unit entry")
	ErrUnknownCommodity = errors.New("commodity is not in the registry")
	ErrNoRecipe         = errors.New("commodity has no known recipe")
)

// tierCategory binds each production tier to its processing-unit category.
var tierCategory = map[int]string{
	1: registry.CategoryBasic,
	2: registry.CategoryAdvanced,
	3: registry.CategoryAdvanced,
	4: registry.CategoryHighTech,
}

// Generate expands a requested commodity/count set into a raw layout record:
// two anchor nodes, one production node per requested unit placed across the
// fixed slot geometry, row chains linked back to storage, storage linked to
// the launchpad, and input/output routes derived from each commodity's
// recipe.
func Generate(counts map[string]int, storageTypeID, launchpadTypeID int, reg *registry.Registry, table *recipes.Table) (*layout.RawRecord, error) {
	if table == nil || table.Len() == 0 {
		return nil, ErrNoRecipes
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total > TotalSlots {
		return nil, fmt.Errorf("%w: requested %d, capacity %d", ErrCapacity, total, TotalSlots)
	}

	planetID, planetName := inferPlanet(reg, storageTypeID, launchpadTypeID)
	log.Info("Generating layout", "units", total, "planet", planetName, "planet_id", planetID)

	facilityTypes, err := facilityTypeIDs(reg, planetName)
	if err != nil {
		return nil, err
	}

	assignments, err := flattenRequest(counts, reg, table)
	if err != nil {
		return nil, err
	}

	rec := &layout.RawRecord{
		PlanetID:           intPtr(planetID),
		CommandCenterLevel: intPtr(DefaultCommandCenterLevel),
		Diameter:           intPtr(PlaceholderDiameter),
		Comment:            fmt.Sprintf("Generated: %d production units (row chain -> storage -> launchpad)", total),
	}

	// Anchors first; positions are one-based in the wire format.
	rec.Pins = append(rec.Pins, layout.RawPin{T: intPtr(storageTypeID), La: storageLat, Lo: storageLon})
	storagePos := 1
	rec.Pins = append(rec.Pins, layout.RawPin{T: intPtr(launchpadTypeID), La: launchpadLat, Lo: launchpadLon})
	launchpadPos := 2

	// Assign units slot by slot, row by row, stopping when the request is
	// exhausted.
	var rowPositions [numRows][]int
	assigned := 0
	for r := 0; r < numRows && assigned < len(assignments); r++ {
		for _, s := range slotRows[r] {
			if assigned >= len(assignments) {
				break
			}
			a := assignments[assigned]
			typeID := facilityTypes[a.recipe.Tier]
			schematicID := a.commodityID
			rec.Pins = append(rec.Pins, layout.RawPin{
				T:  intPtr(typeID),
				S:  intPtr(schematicID),
				La: s.lat,
				Lo: s.lon,
			})
			rowPositions[r] = append(rowPositions[r], len(rec.Pins))
			assigned++
		}
	}

	// Connectivity: chain each row, tie the row's nearest node to storage,
	// then storage to launchpad.
	for r := 0; r < numRows; r++ {
		row := rowPositions[r]
		if len(row) == 0 {
			continue
		}
		for i := 0; i < len(row)-1; i++ {
			rec.Links = append(rec.Links, layout.RawLink{
				S: intPtr(row[i]), D: intPtr(row[i+1]), Lv: DefaultLinkLevel,
			})
		}
		rec.Links = append(rec.Links, layout.RawLink{
			S: intPtr(row[0]), D: intPtr(storagePos), Lv: DefaultLinkLevel,
		})
	}
	rec.Links = append(rec.Links, layout.RawLink{
		S: intPtr(storagePos), D: intPtr(launchpadPos), Lv: DefaultLinkLevel,
	})

	// Routes: every production node ships its output to the launchpad and
	// draws each recipe input from storage. Recipes with no inputs emit no
	// input routes.
	pos := launchpadPos
	for _, a := range assignments[:assigned] {
		pos++
		rec.Routes = append(rec.Routes, layout.RawRoute{
			S: intPtr(pos), D: intPtr(launchpadPos), T: intPtr(a.commodityID), Qty: DefaultRouteQuantity,
		})
		for _, input := range a.recipe.Inputs {
			in := input
			rec.Routes = append(rec.Routes, layout.RawRoute{
				S: intPtr(storagePos), D: intPtr(pos), T: &in, Qty: DefaultRouteQuantity,
			})
		}
	}

	log.Info("Layout generated",
		"pins", len(rec.Pins), "links", len(rec.Links), "routes", len(rec.Routes))
	return rec, nil
}

// inferPlanet picks the target planet from whichever anchor resolves to a
// known, non-generic planet, falling back to the default planet id.
func inferPlanet(reg *registry.Registry, anchorIDs ...int) (int, string) {
	for _, id := range anchorIDs {
		_, planet := reg.LookupPinType(id)
		if planet != registry.PlanetUnknown && planet != registry.PlanetGeneric {
			if pid, ok := reg.PlanetIDByName(planet); ok {
				return pid, planet
			}
			return DefaultPlanetID, planet
		}
	}
	log.Warn("Could not infer planet type from anchors, using default", "planet_id", DefaultPlanetID)
	return DefaultPlanetID, registry.PlanetUnknown
}

// facilityTypeIDs resolves the planet-specific processing-unit type id for
// every production tier. Missing categories fail together so the caller sees
// the full configuration gap at once.
func facilityTypeIDs(reg *registry.Registry, planetName string) (map[int]int, error) {
	types := make(map[int]int, len(tierCategory))
	missing := make(map[string]bool)
	for tier, category := range tierCategory {
		id, ok := reg.FindPinTypeID(category, planetName)
		if !ok {
			missing[category] = true
			continue
		}
		types[tier] = id
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w for planet %q: %s",
			ErrMissingCategory, planetName, strings.Join(names, ", "))
	}
	return types, nil
}

// assignment is one production unit to place: the commodity it outputs and
// the recipe that manufactures it.
type assignment struct {
	name        string
	commodityID int
	recipe      recipes.Recipe
}

// flattenRequest expands the {name: count} request into individual unit
// assignments, sorted by name so slot assignment is deterministic.
func flattenRequest(counts map[string]int, reg *registry.Registry, table *recipes.Table) ([]assignment, error) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []assignment
	for _, name := range names {
		id, ok := reg.CommodityIDByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCommodity, name)
		}
		recipe, ok := table.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q cannot be manufactured", ErrNoRecipe, name)
		}
		for i := 0; i < counts[name]; i++ {
			out = append(out, assignment{name: name, commodityID: id, recipe: recipe})
		}
	}
	return out, nil
}

func intPtr(v int) *int {
	return &v
}
