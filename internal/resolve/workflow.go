package resolve

import (
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"colony/internal/layout"
	"colony/internal/log"
	"colony/internal/registry"
)

// Kind selects which identifier space a resolution request covers.
type Kind string

const (
	KindCommodity Kind = "commodity"
	KindPinType   Kind = "pin_type"
)

// Request asks a collaborator to name a set of unresolved identifiers.
// Candidates are known display names (commodities) or categories (placement
// types) offered as suggestions; PlanetHint carries the record's planet id
// for placement-type resolution, zero when unknown.
type Request struct {
	Kind       Kind
	IDs        []int
	Candidates []string
	PlanetHint int
}

// Choice is one operator-supplied resolution: for commodities Name is the
// display name, for placement types it is the category.
type Choice struct {
	ID   int
	Name string
}

// Resolver is the external collaborator that collects names for unresolved
// identifiers. Returning no choices means the operator declined; the
// workflow stops rather than looping.
type Resolver interface {
	Resolve(Request) ([]Choice, error)
}

// Workflow drives the write-then-reparse cycle: parse, hand unresolved
// identifiers to the resolver, write its choices into the registry, save,
// and re-parse. Commodities are resolved first; unresolved placement types
// are picked up by the re-parse that follows.
type Workflow struct {
	Registry *registry.Registry
	Resolver Resolver
}

// maxPasses bounds the cycle: one pass per identifier kind plus one final
// re-parse is all a cooperating resolver ever needs.
const maxPasses = 4

// Run parses the record and resolves unresolved identifiers until the graph
// is clean, the resolver declines, or the pass bound is hit. The returned
// graph reflects the registry state after the last write.
func (w *Workflow) Run(rec *layout.RawRecord) (*layout.Graph, error) {
	planetHint := 0
	if rec != nil && rec.PlanetID != nil {
		planetHint = *rec.PlanetID
	}

	g, err := layout.Parse(rec, w.Registry)
	if err != nil {
		return nil, err
	}

	for pass := 0; pass < maxPasses && !g.Unresolved.Empty(); pass++ {
		var req Request
		switch {
		case len(g.Unresolved.Commodities) > 0:
			req = Request{
				Kind:       KindCommodity,
				IDs:        g.Unresolved.Commodities,
				Candidates: sorted(w.Registry.CommodityNames()),
				PlanetHint: planetHint,
			}
		default:
			req = Request{
				Kind:       KindPinType,
				IDs:        g.Unresolved.PinTypes,
				Candidates: sorted(w.Registry.Categories()),
				PlanetHint: planetHint,
			}
		}

		choices, err := w.Resolver.Resolve(req)
		if err != nil {
			return nil, fmt.Errorf("resolution failed: %w", err)
		}
		if len(choices) == 0 {
			log.Info("Resolver returned no choices, keeping remaining identifiers unresolved",
				"kind", string(req.Kind), "remaining", len(req.IDs))
			return g, nil
		}

		for _, c := range choices {
			switch req.Kind {
			case KindCommodity:
				w.Registry.InsertCommodity(c.ID, c.Name)
			case KindPinType:
				w.Registry.InsertPinType(c.ID, c.Name, registry.PlanetUnknown)
			}
		}
		if err := w.Registry.Save(); err != nil {
			return nil, fmt.Errorf("failed to save registry after resolution: %w", err)
		}
		log.Info("Registry updated, re-parsing", "kind", string(req.Kind), "resolved", len(choices))

		g, err = layout.Parse(rec, w.Registry)
		if err != nil {
			return nil, err
		}
	}

	return g, nil
}

// sorted orders candidate names with a language-aware collator so the
// suggestion lists match what operators expect to scan.
func sorted(names []string) []string {
	collate.New(language.English).SortStrings(names)
	return names
}
