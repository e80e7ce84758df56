package layout

import (
	"sort"

	"colony/internal/log"
	"colony/internal/registry"
)

// Parse normalizes a raw layout record into a typed graph, resolving
// identifiers through the registry. Unknown identifiers are data, not
// errors: they resolve to Unknown/placeholder values and are collected in
// the graph's unresolved sets. Parse fails only when the record itself is
// missing.
func Parse(rec *RawRecord, reg *registry.Registry) (*Graph, error) {
	if rec == nil {
		return nil, ErrMalformedInput
	}

	log.Info("Parsing layout record",
		"pins", len(rec.Pins), "links", len(rec.Links), "routes", len(rec.Routes))

	g := &Graph{
		CommandCenterLevel: rec.CommandCenterLevel,
		Diameter:           rec.Diameter,
		Comment:            rec.Comment,
	}
	if rec.PlanetID != nil {
		id := *rec.PlanetID
		g.PlanetID = &id
		g.PlanetName = reg.LookupPlanetName(id)
	}

	unresolvedPins := make(map[int]struct{})
	unresolvedCommodities := make(map[int]struct{})

	// Maps original one-based positions to internal zero-based indices.
	// Entries that failed to decode never enter the map, so references to
	// them are detectably dangling.
	positions := make(map[int]int)

	for i, pin := range rec.Pins {
		original := i + 1
		if pin.Invalid() {
			log.Warn("Skipping placement entry that could not be read", "position", original)
			continue
		}

		node := Node{
			Index:         len(g.Nodes),
			OriginalIndex: original,
			Lat:           pin.La,
			Lon:           pin.Lo,
		}

		if pin.T == nil {
			// A missing type id still occupies a slot; it surfaces as the
			// synthetic missing identifier instead of dropping the node.
			node.TypeID = MissingTypeID
			node.Category = registry.CategoryUnknown
			node.Planet = registry.PlanetUnknown
			unresolvedPins[MissingTypeID] = struct{}{}
			log.Warn("Placement entry missing type id, keeping as unresolved", "position", original)
		} else {
			node.TypeID = *pin.T
			node.Category, node.Planet = reg.LookupPinType(*pin.T)
			if !reg.KnowsPinType(*pin.T) {
				unresolvedPins[*pin.T] = struct{}{}
			}
		}

		if pin.S != nil {
			sid := *pin.S
			node.SchematicID = &sid
			res := reg.ResolveCommodity(sid)
			node.SchematicName = res.Display()
			if !res.Known {
				unresolvedCommodities[sid] = struct{}{}
			}
		}

		positions[original] = node.Index
		g.Nodes = append(g.Nodes, node)
	}

	for i, link := range rec.Links {
		if link.S == nil || link.D == nil {
			log.Warn("Dropping connectivity entry with missing endpoint", "entry", i+1)
			continue
		}
		src, okS := positions[*link.S]
		dst, okD := positions[*link.D]
		if !okS || !okD {
			log.Warn("Dropping connectivity entry referencing skipped placement",
				"entry", i+1, "source", *link.S, "destination", *link.D)
			continue
		}
		g.Links = append(g.Links, Link{Source: src, Target: dst, Level: link.Lv})
	}

	for i, route := range rec.Routes {
		srcPos, dstPos, ok := routeEndpoints(route)
		if !ok {
			log.Warn("Dropping flow entry with no usable endpoints", "entry", i+1)
			continue
		}
		src, okS := positions[srcPos]
		dst, okD := positions[dstPos]
		if !okS || !okD {
			log.Warn("Dropping flow entry referencing skipped placement",
				"entry", i+1, "source", srcPos, "destination", dstPos)
			continue
		}

		commodityID, ok := routeCommodity(route, g.Nodes[src])
		if !ok {
			log.Warn("Dropping flow entry with no commodity and no source schematic", "entry", i+1)
			continue
		}

		res := reg.ResolveCommodity(commodityID)
		if !res.Known {
			unresolvedCommodities[commodityID] = struct{}{}
		}

		g.Routes = append(g.Routes, Route{
			Source:        src,
			Target:        dst,
			CommodityID:   commodityID,
			CommodityName: res.Display(),
			Quantity:      route.Qty,
		})
	}

	g.Unresolved = Unresolved{
		PinTypes:    sortedIDs(unresolvedPins),
		Commodities: sortedIDs(unresolvedCommodities),
	}

	log.Info("Parse complete",
		"nodes", len(g.Nodes), "links", len(g.Links), "routes", len(g.Routes),
		"unresolved_pin_types", len(g.Unresolved.PinTypes),
		"unresolved_commodities", len(g.Unresolved.Commodities))

	return g, nil
}

// routeEndpoints returns the one-based endpoint positions of a flow entry,
// preferring explicit S/D fields and falling back to the first and last
// elements of a legacy path sequence.
func routeEndpoints(route RawRoute) (src, dst int, ok bool) {
	if route.S != nil && route.D != nil {
		return *route.S, *route.D, true
	}
	if len(route.Path) >= 2 {
		return route.Path[0], route.Path[len(route.Path)-1], true
	}
	return 0, 0, false
}

// routeCommodity returns the commodity carried by a flow entry. When the
// entry omits it, the source node's schematic output is the only sensible
// inference; a source with no schematic leaves the route undecidable.
func routeCommodity(route RawRoute, source Node) (int, bool) {
	if route.T != nil {
		return *route.T, true
	}
	if source.SchematicID != nil {
		return *source.SchematicID, true
	}
	return 0, false
}

func sortedIDs(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
