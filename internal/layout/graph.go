package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// MissingTypeID is the synthetic placement-type id assigned to entries whose
// declared type identifier is absent. The node still occupies its slot and
// the synthetic id shows up in the unresolved placement-type set.
const MissingTypeID = -1

// Node is one placement in the typed graph. Index is the internal zero-based
// index, stable for the lifetime of a single parse; OriginalIndex is the
// one-based position in the input sequence.
type Node struct {
	Index         int
	OriginalIndex int
	Lat           float64
	Lon           float64
	TypeID        int
	Category      string
	Planet        string
	SchematicID   *int
	SchematicName string
}

// DisplayName renders the node the way the interaction layer labels it.
func (n Node) DisplayName() string {
	name := fmt.Sprintf("%s (%s)", n.Category, n.Planet)
	if n.SchematicID != nil {
		name += fmt.Sprintf(": %s", n.SchematicName)
	}
	return name
}

// Link is a structural connection between two nodes, by internal index. It
// carries no material semantics, only a capacity level.
type Link struct {
	Source int
	Target int
	Level  int
}

// Route is a directed material-flow edge between two nodes, by internal
// index.
type Route struct {
	Source        int
	Target        int
	CommodityID   int
	CommodityName string
	Quantity      int
}

// RouteGroup collects every route between one unordered node pair, so
// bidirectional and multi-commodity traffic between the same two nodes can
// be presented together. A <= B always holds.
type RouteGroup struct {
	A      int
	B      int
	Routes []Route
}

// Unresolved holds the identifiers a parse could not resolve against the
// registry, sorted. Schematic identifiers share the commodity space, so the
// commodity set mixes schematic outputs and ordinary materials.
type Unresolved struct {
	PinTypes    []int
	Commodities []int
}

// Empty reports whether nothing was left unresolved.
func (u Unresolved) Empty() bool {
	return len(u.PinTypes) == 0 && len(u.Commodities) == 0
}

// Graph is the fully resolved, navigable form of a layout. It is rebuilt
// from scratch on every parse; node indices must not be reused across
// re-parses because node ordering can change when damaged entries are
// dropped.
type Graph struct {
	Nodes  []Node
	Links  []Link
	Routes []Route

	Unresolved Unresolved

	PlanetID           *int
	PlanetName         string
	CommandCenterLevel *int
	Diameter           *int
	Comment            string
}

// RouteGroups groups the graph's routes by unordered node pair, ordered by
// pair.
func (g *Graph) RouteGroups() []RouteGroup {
	type pair struct{ a, b int }
	grouped := make(map[pair][]Route)
	for _, r := range g.Routes {
		p := pair{r.Source, r.Target}
		if p.a > p.b {
			p.a, p.b = p.b, p.a
		}
		grouped[p] = append(grouped[p], r)
	}
	pairs := make([]pair, 0, len(grouped))
	for p := range grouped {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
	groups := make([]RouteGroup, 0, len(pairs))
	for _, p := range pairs {
		groups = append(groups, RouteGroup{A: p.a, B: p.b, Routes: grouped[p]})
	}
	return groups
}

// Connectivity builds a directed graph of the structural links, weighted by
// level, for navigation and display.
func (g *Graph) Connectivity() (graph.Graph[int, int], error) {
	cg := graph.New(func(i int) int { return i }, graph.Directed(), graph.Weighted())
	for _, n := range g.Nodes {
		if err := cg.AddVertex(n.Index); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("failed to add node %d: %w", n.Index, err)
		}
	}
	for _, l := range g.Links {
		err := cg.AddEdge(l.Source, l.Target, graph.EdgeWeight(l.Level))
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add link %d->%d: %w", l.Source, l.Target, err)
		}
	}
	return cg, nil
}

// FlowNetwork builds a directed graph of the material routes, weighted by
// quantity. Parallel routes between the same ordered pair collapse into one
// edge carrying the summed quantity.
func (g *Graph) FlowNetwork() (graph.Graph[int, int], error) {
	type pair struct{ s, t int }
	totals := make(map[pair]int)
	for _, r := range g.Routes {
		totals[pair{r.Source, r.Target}] += r.Quantity
	}

	fg := graph.New(func(i int) int { return i }, graph.Directed(), graph.Weighted())
	for _, n := range g.Nodes {
		if err := fg.AddVertex(n.Index); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("failed to add node %d: %w", n.Index, err)
		}
	}
	for p, qty := range totals {
		err := fg.AddEdge(p.s, p.t, graph.EdgeWeight(qty))
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add route %d->%d: %w", p.s, p.t, err)
		}
	}
	return fg, nil
}
