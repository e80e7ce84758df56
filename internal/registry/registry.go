package registry

import (
	"fmt"
	"sort"
)

// Placement categories recognized by the layout tooling. Stores may carry
// additional categories; these are the ones the generator and resolver
// reason about.
const (
	CategoryExtractor = "Extractor"
	CategoryStorage   = "Storage Facility"
	CategoryLaunchpad = "Launchpad"
	CategoryBasic     = "Basic Industrial Facility"
	CategoryAdvanced  = "Advanced Industrial Facility"
	CategoryHighTech  = "High-Tech Industrial Facility"
	CategoryCommand   = "Command Center"
	CategoryUnknown   = "Unknown"
)

// Planet markers used by the tiered placement-type search.
const (
	PlanetGeneric = "Generic"
	PlanetUnknown = "Unknown"
)

// PinType describes one placement-type entry: what the unit is and which
// planet variant it belongs to.
type PinType struct {
	Category string `json:"category"`
	Planet   string `json:"planet"`
}

// Settings holds the persisted display preferences.
type Settings struct {
	ShowRoutes bool `json:"show_routes"`
	ShowLabels bool `json:"show_labels"`
	ShowGrid   bool `json:"show_grid"`
}

// DefaultSettings returns the documented preference defaults.
func DefaultSettings() Settings {
	return Settings{ShowRoutes: true, ShowLabels: true, ShowGrid: false}
}

// Resolution is the result of looking up a numeric identifier. Known reports
// whether the registry had an entry; Name is empty when it did not.
type Resolution struct {
	ID    int
	Name  string
	Known bool
}

// Display returns the resolved name, or a placeholder embedding the id for
// identifiers the registry does not know.
func (r Resolution) Display() string {
	if r.Known {
		return r.Name
	}
	return fmt.Sprintf("Unknown (%d)", r.ID)
}

// Registry maps opaque numeric identifiers to display names and categories.
// It is owned by one session and must not be mutated concurrently with reads.
type Registry struct {
	path        string
	pinTypes    map[int]PinType
	commodities map[int]string
	planetTypes map[int]string
	settings    Settings
}

// New returns an empty registry bound to the given store path. The path may
// be empty for a purely in-memory registry; Save then fails.
func New(path string) *Registry {
	return &Registry{
		path:        path,
		pinTypes:    make(map[int]PinType),
		commodities: make(map[int]string),
		planetTypes: make(map[int]string),
		settings:    DefaultSettings(),
	}
}

// Path returns the backing store location, empty for in-memory registries.
func (r *Registry) Path() string {
	return r.path
}

// LookupPinType resolves a placement-type identifier to its category and
// planet. Absent identifiers resolve to ("Unknown", "Unknown"), never an
// error.
func (r *Registry) LookupPinType(id int) (category, planet string) {
	if pt, ok := r.pinTypes[id]; ok {
		category, planet = pt.Category, pt.Planet
		if category == "" {
			category = CategoryUnknown
		}
		if planet == "" {
			planet = PlanetUnknown
		}
		return category, planet
	}
	return CategoryUnknown, PlanetUnknown
}

// KnowsPinType reports whether the registry has an entry for the identifier.
func (r *Registry) KnowsPinType(id int) bool {
	_, ok := r.pinTypes[id]
	return ok
}

// ResolveCommodity looks up a commodity (or schematic, same identifier
// space) by id.
func (r *Registry) ResolveCommodity(id int) Resolution {
	name, ok := r.commodities[id]
	return Resolution{ID: id, Name: name, Known: ok}
}

// LookupCommodity returns the commodity display name, or the standard
// placeholder when the id is unknown.
func (r *Registry) LookupCommodity(id int) string {
	return r.ResolveCommodity(id).Display()
}

// ResolvePlanet looks up a planet-type id.
func (r *Registry) ResolvePlanet(id int) Resolution {
	name, ok := r.planetTypes[id]
	return Resolution{ID: id, Name: name, Known: ok}
}

// LookupPlanetName returns the planet display name or a placeholder.
func (r *Registry) LookupPlanetName(id int) string {
	return r.ResolvePlanet(id).Display()
}

// InsertPinType upserts a placement-type entry.
func (r *Registry) InsertPinType(id int, category, planet string) {
	if planet == "" {
		planet = PlanetUnknown
	}
	r.pinTypes[id] = PinType{Category: category, Planet: planet}
}

// InsertCommodity upserts a commodity entry.
func (r *Registry) InsertCommodity(id int, name string) {
	r.commodities[id] = name
}

// InsertPlanetType upserts a planet-type entry.
func (r *Registry) InsertPlanetType(id int, name string) {
	r.planetTypes[id] = name
}

// FindPinTypeID searches for a placement-type id by category, preferring an
// exact planet match, then a Generic entry, then an Unknown one. Returns
// false when no entry satisfies any tier; callers treat that as a
// not-configured condition, not a crash.
func (r *Registry) FindPinTypeID(category, preferredPlanet string) (int, bool) {
	for _, planet := range []string{preferredPlanet, PlanetGeneric, PlanetUnknown} {
		if planet == "" {
			continue
		}
		// Iterate ids in sorted order so ties resolve deterministically.
		for _, id := range r.sortedPinTypeIDs() {
			pt := r.pinTypes[id]
			if pt.Category == category && pt.Planet == planet {
				return id, true
			}
		}
	}
	return 0, false
}

// PlanetIDByName reverse-looks-up a planet-type id by display name.
func (r *Registry) PlanetIDByName(name string) (int, bool) {
	for _, id := range r.sortedPlanetTypeIDs() {
		if r.planetTypes[id] == name {
			return id, true
		}
	}
	return 0, false
}

// CommodityIDByName reverse-looks-up a commodity id by exact display name.
func (r *Registry) CommodityIDByName(name string) (int, bool) {
	for _, id := range r.sortedCommodityIDs() {
		if r.commodities[id] == name {
			return id, true
		}
	}
	return 0, false
}

// Commodities returns a copy of the commodity table.
func (r *Registry) Commodities() map[int]string {
	out := make(map[int]string, len(r.commodities))
	for id, name := range r.commodities {
		out[id] = name
	}
	return out
}

// CommodityNames returns all known commodity names, sorted.
func (r *Registry) CommodityNames() []string {
	names := make([]string, 0, len(r.commodities))
	for _, name := range r.commodities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categories returns the standard placement categories merged with any
// categories already present in the store, sorted and deduplicated.
func (r *Registry) Categories() []string {
	seen := map[string]bool{
		CategoryExtractor: true,
		CategoryStorage:   true,
		CategoryLaunchpad: true,
		CategoryBasic:     true,
		CategoryAdvanced:  true,
		CategoryHighTech:  true,
		CategoryCommand:   true,
	}
	for _, pt := range r.pinTypes {
		if pt.Category != "" && pt.Category != CategoryUnknown {
			seen[pt.Category] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings returns the current display preferences.
func (r *Registry) Settings() Settings {
	return r.settings
}

// SetSettings replaces the display preferences.
func (r *Registry) SetSettings(s Settings) {
	r.settings = s
}

func (r *Registry) sortedPinTypeIDs() []int {
	ids := make([]int, 0, len(r.pinTypes))
	for id := range r.pinTypes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (r *Registry) sortedPlanetTypeIDs() []int {
	ids := make([]int, 0, len(r.planetTypes))
	for id := range r.planetTypes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (r *Registry) sortedCommodityIDs() []int {
	ids := make([]int, 0, len(r.commodities))
	for id := range r.commodities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
