package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupPinTypeUnknown(t *testing.T) {
	reg := New("")

	category, planet := reg.LookupPinType(500)
	assert.Equal(t, CategoryUnknown, category)
	assert.Equal(t, PlanetUnknown, planet)
	assert.False(t, reg.KnowsPinType(500))
}

func TestLookupPinTypeKnown(t *testing.T) {
	reg := New("")
	reg.InsertPinType(1001, CategoryExtractor, "Barren")

	category, planet := reg.LookupPinType(1001)
	assert.Equal(t, CategoryExtractor, category)
	assert.Equal(t, "Barren", planet)
	assert.True(t, reg.KnowsPinType(1001))
}

func TestResolveCommodity(t *testing.T) {
	reg := New("")
	reg.InsertCommodity(4096, "Water")

	known := reg.ResolveCommodity(4096)
	assert.True(t, known.Known)
	assert.Equal(t, "Water", known.Display())

	unknown := reg.ResolveCommodity(9999)
	assert.False(t, unknown.Known)
	assert.Equal(t, "Unknown (9999)", unknown.Display())
	assert.Equal(t, "Unknown (9999)", reg.LookupCommodity(9999))
}

func TestInsertCommodityIsUpsert(t *testing.T) {
	reg := New("")
	reg.InsertCommodity(4096, "Water")
	reg.InsertCommodity(4096, "Aqueous Liquids")

	assert.Equal(t, "Aqueous Liquids", reg.LookupCommodity(4096))
}

func TestFindPinTypeIDSearchOrder(t *testing.T) {
	tests := []struct {
		name    string
		entries map[int]PinType
		planet  string
		wantID  int
		wantOK  bool
	}{
		{
			name: "exact planet match wins",
			entries: map[int]PinType{
				10: {Category: CategoryBasic, Planet: "Barren"},
				11: {Category: CategoryBasic, Planet: PlanetGeneric},
			},
			planet: "Barren",
			wantID: 10,
			wantOK: true,
		},
		{
			name: "generic beats unknown",
			entries: map[int]PinType{
				12: {Category: CategoryBasic, Planet: PlanetUnknown},
				11: {Category: CategoryBasic, Planet: PlanetGeneric},
			},
			planet: "Barren",
			wantID: 11,
			wantOK: true,
		},
		{
			name: "unknown planet entry as last resort",
			entries: map[int]PinType{
				12: {Category: CategoryBasic, Planet: PlanetUnknown},
			},
			planet: "Barren",
			wantID: 12,
			wantOK: true,
		},
		{
			name: "no tier satisfied",
			entries: map[int]PinType{
				12: {Category: CategoryHighTech, Planet: "Barren"},
			},
			planet: "Barren",
			wantOK: false,
		},
		{
			name: "deterministic tie break on lowest id",
			entries: map[int]PinType{
				21: {Category: CategoryBasic, Planet: "Barren"},
				20: {Category: CategoryBasic, Planet: "Barren"},
			},
			planet: "Barren",
			wantID: 20,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New("")
			for id, pt := range tt.entries {
				reg.InsertPinType(id, pt.Category, pt.Planet)
			}
			id, ok := reg.FindPinTypeID(CategoryBasic, tt.planet)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestPlanetAndCommodityReverseLookup(t *testing.T) {
	reg := New("")
	reg.InsertPlanetType(2016, "Barren")
	reg.InsertCommodity(4096, "Water")

	id, ok := reg.PlanetIDByName("Barren")
	assert.True(t, ok)
	assert.Equal(t, 2016, id)

	_, ok = reg.PlanetIDByName("Gas")
	assert.False(t, ok)

	id, ok = reg.CommodityIDByName("Water")
	assert.True(t, ok)
	assert.Equal(t, 4096, id)
}

func TestCategoriesIncludesStoreEntries(t *testing.T) {
	reg := New("")
	reg.InsertPinType(50, "Orbital Relay", "Barren")
	reg.InsertPinType(51, CategoryUnknown, "Barren")

	categories := reg.Categories()
	assert.Contains(t, categories, "Orbital Relay")
	assert.Contains(t, categories, CategoryExtractor)
	assert.NotContains(t, categories, CategoryUnknown)
}

func TestDefaultSettings(t *testing.T) {
	reg := New("")
	s := reg.Settings()
	assert.True(t, s.ShowRoutes)
	assert.True(t, s.ShowLabels)
	assert.False(t, s.ShowGrid)
}
