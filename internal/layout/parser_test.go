package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colony/internal/registry"
)

func testRegistry() *registry.Registry {
	reg := registry.New("")
	reg.InsertPinType(1001, registry.CategoryExtractor, "Barren")
	reg.InsertPinType(1002, registry.CategoryStorage, "Barren")
	reg.InsertCommodity(4096, "Water")
	reg.InsertPlanetType(2016, "Barren")
	return reg
}

func TestParseNilRecordFails(t *testing.T) {
	_, err := Parse(nil, testRegistry())
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestParseEmptyRecord(t *testing.T) {
	g, err := Parse(&RawRecord{}, testRegistry())
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Links)
	assert.Empty(t, g.Routes)
	assert.True(t, g.Unresolved.Empty())
}

func TestParseUnknownTypeIDIsDataNotError(t *testing.T) {
	// Registry knows Water and nothing else; a type id 500 parses to an
	// Unknown node and lands in the unresolved placement-type set.
	reg := registry.New("")
	reg.InsertCommodity(4096, "Water")

	rec := &RawRecord{Pins: []RawPin{{T: intPtr(500), La: 1, Lo: 2}}}
	g, err := Parse(rec, reg)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, registry.CategoryUnknown, g.Nodes[0].Category)
	assert.Equal(t, 500, g.Nodes[0].TypeID)
	assert.Equal(t, []int{500}, g.Unresolved.PinTypes)
	assert.Empty(t, g.Unresolved.Commodities)
}

func TestParseMissingTypeIDKeepsSlot(t *testing.T) {
	rec := &RawRecord{Pins: []RawPin{
		{La: 1, Lo: 2}, // no type id
		{T: intPtr(1001), La: 3, Lo: 4},
	}}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, MissingTypeID, g.Nodes[0].TypeID)
	assert.Equal(t, registry.CategoryUnknown, g.Nodes[0].Category)
	assert.Equal(t, 1, g.Nodes[0].OriginalIndex)
	assert.Contains(t, g.Unresolved.PinTypes, MissingTypeID)

	// The second entry still maps to its declared position.
	assert.Equal(t, 2, g.Nodes[1].OriginalIndex)
	assert.Equal(t, 1, g.Nodes[1].Index)
}

func TestParseSkipsUnreadablePinsAndDanglingEdges(t *testing.T) {
	rec := &RawRecord{
		Pins: []RawPin{
			{T: intPtr(1001), La: 0, Lo: 0},
			{invalid: true},
			{T: intPtr(1002), La: 1, Lo: 1},
		},
		Links: []RawLink{
			{S: intPtr(1), D: intPtr(3), Lv: 5}, // valid, remapped around the gap
			{S: intPtr(1), D: intPtr(2), Lv: 5}, // references the skipped entry
			{S: intPtr(1), Lv: 5},               // missing endpoint
		},
		Routes: []RawRoute{
			{S: intPtr(2), D: intPtr(3), T: intPtr(4096), Qty: 10}, // skipped source
		},
	}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, 1, g.Nodes[0].OriginalIndex)
	assert.Equal(t, 3, g.Nodes[1].OriginalIndex)

	require.Len(t, g.Links, 1)
	assert.Equal(t, Link{Source: 0, Target: 1, Level: 5}, g.Links[0])
	assert.Empty(t, g.Routes)
}

func TestParseSchematicResolution(t *testing.T) {
	rec := &RawRecord{Pins: []RawPin{
		{T: intPtr(1001), S: intPtr(4096), La: 0, Lo: 0},
		{T: intPtr(1001), S: intPtr(9999), La: 1, Lo: 1},
	}}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)

	assert.Equal(t, "Water", g.Nodes[0].SchematicName)
	assert.Equal(t, "Unknown (9999)", g.Nodes[1].SchematicName)
	// Schematics share the commodity identifier space.
	assert.Equal(t, []int{9999}, g.Unresolved.Commodities)
}

func TestParseRouteLegacyPathFallback(t *testing.T) {
	rec := &RawRecord{
		Pins: []RawPin{
			{T: intPtr(1001), La: 0, Lo: 0},
			{T: intPtr(1001), La: 1, Lo: 1},
			{T: intPtr(1002), La: 2, Lo: 2},
		},
		Routes: []RawRoute{
			{Path: []int{1, 2, 3}, T: intPtr(4096), Qty: 3000},
		},
	}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)

	require.Len(t, g.Routes, 1)
	assert.Equal(t, 0, g.Routes[0].Source)
	assert.Equal(t, 2, g.Routes[0].Target)
	assert.Equal(t, "Water", g.Routes[0].CommodityName)
	assert.Equal(t, 3000, g.Routes[0].Quantity)
}

func TestParseRouteTooShortPathDropped(t *testing.T) {
	rec := &RawRecord{
		Pins:   []RawPin{{T: intPtr(1001), La: 0, Lo: 0}},
		Routes: []RawRoute{{Path: []int{1}, T: intPtr(4096), Qty: 10}},
	}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)
	assert.Empty(t, g.Routes)
}

func TestParseRouteCommodityInferredFromSourceSchematic(t *testing.T) {
	rec := &RawRecord{
		Pins: []RawPin{
			{T: intPtr(1001), S: intPtr(4096), La: 0, Lo: 0},
			{T: intPtr(1002), La: 1, Lo: 1},
		},
		Routes: []RawRoute{
			{S: intPtr(1), D: intPtr(2), Qty: 500}, // no commodity id
		},
	}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)

	require.Len(t, g.Routes, 1)
	assert.Equal(t, 4096, g.Routes[0].CommodityID)
	assert.Equal(t, "Water", g.Routes[0].CommodityName)
}

func TestParseRouteWithoutCommodityOrSchematicDropped(t *testing.T) {
	rec := &RawRecord{
		Pins: []RawPin{
			{T: intPtr(1002), La: 0, Lo: 0}, // no schematic
			{T: intPtr(1002), La: 1, Lo: 1},
		},
		Routes: []RawRoute{{S: intPtr(1), D: intPtr(2), Qty: 500}},
	}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)
	assert.Empty(t, g.Routes)
}

func TestParseUnknownRouteCommodityCollected(t *testing.T) {
	rec := &RawRecord{
		Pins: []RawPin{
			{T: intPtr(1001), La: 0, Lo: 0},
			{T: intPtr(1002), La: 1, Lo: 1},
		},
		Routes: []RawRoute{{S: intPtr(1), D: intPtr(2), T: intPtr(7777), Qty: 500}},
	}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)

	require.Len(t, g.Routes, 1)
	assert.Equal(t, "Unknown (7777)", g.Routes[0].CommodityName)
	assert.Equal(t, []int{7777}, g.Unresolved.Commodities)
}

func TestParseScenarioFromRegistryWithOnlyWater(t *testing.T) {
	// Registry: {commodities: {4096: Water}}, no placement types. One
	// placement of type 500 with no schematic parses to one Unknown node,
	// unresolved placement types {500}, empty unresolved commodities.
	reg := registry.New("")
	reg.InsertCommodity(4096, "Water")

	rec := &RawRecord{Pins: []RawPin{{T: intPtr(500), La: 0, Lo: 0}}}
	g, err := Parse(rec, reg)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, registry.CategoryUnknown, g.Nodes[0].Category)
	assert.Equal(t, []int{500}, g.Unresolved.PinTypes)
	assert.Empty(t, g.Unresolved.Commodities)
}

func TestParseMetadata(t *testing.T) {
	planet := 2016
	level := 5
	diam := 100000
	rec := &RawRecord{
		PlanetID:           &planet,
		CommandCenterLevel: &level,
		Diameter:           &diam,
		Comment:            "a layout",
	}
	g, err := Parse(rec, testRegistry())
	require.NoError(t, err)

	require.NotNil(t, g.PlanetID)
	assert.Equal(t, 2016, *g.PlanetID)
	assert.Equal(t, "Barren", g.PlanetName)
	assert.Equal(t, 5, *g.CommandCenterLevel)
	assert.Equal(t, 100000, *g.Diameter)
	assert.Equal(t, "a layout", g.Comment)
}
