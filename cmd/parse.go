package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"colony/internal/layout"
	"colony/internal/registry"
	"colony/internal/resolve"
)

var parseResolve bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a raw layout record into a typed graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseResolve, "resolve", false,
		"interactively resolve unknown identifiers and save them to the registry")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read layout file: %w", err)
	}
	rec, err := layout.Decode(data)
	if err != nil {
		return err
	}

	var g *layout.Graph
	if parseResolve && isatty.IsTerminal(os.Stdin.Fd()) {
		wf := &resolve.Workflow{
			Registry: reg,
			Resolver: newTerminalResolver(cmd.InOrStdin(), cmd.OutOrStdout()),
		}
		g, err = wf.Run(rec)
	} else {
		g, err = layout.Parse(rec, reg)
	}
	if err != nil {
		return err
	}

	printGraph(cmd, g, reg)
	return nil
}

func printGraph(cmd *cobra.Command, g *layout.Graph, reg *registry.Registry) {
	out := cmd.OutOrStdout()

	if g.PlanetID != nil {
		fmt.Fprintf(out, "Planet: %s (id %d)\n", g.PlanetName, *g.PlanetID)
	}
	if g.CommandCenterLevel != nil {
		fmt.Fprintf(out, "Command center level: %d\n", *g.CommandCenterLevel)
	}
	if g.Comment != "" {
		fmt.Fprintf(out, "Comment: %s\n", g.Comment)
	}
	fmt.Fprintf(out, "Placements: %d, links: %d, routes: %d\n",
		len(g.Nodes), len(g.Links), len(g.Routes))

	settings := reg.Settings()

	if settings.ShowLabels {
		fmt.Fprintln(out, "\nPlacements:")
		neighbors := linkNeighbors(g)
		for _, n := range g.Nodes {
			fmt.Fprintf(out, "  [%d] %s at (%.2f, %.2f)", n.Index, n.DisplayName(), n.Lat, n.Lon)
			if links := neighbors[n.Index]; len(links) > 0 {
				fmt.Fprintf(out, " -> %s", joinInts(links))
			}
			fmt.Fprintln(out)
		}
	}

	if settings.ShowRoutes && len(g.Routes) > 0 {
		fmt.Fprintln(out, "\nRoutes:")
		for _, group := range g.RouteGroups() {
			fmt.Fprintf(out, "  %d <-> %d:\n", group.A, group.B)
			for _, r := range group.Routes {
				fmt.Fprintf(out, "    %d -> %d: %s x%d\n",
					r.Source, r.Target, r.CommodityName, r.Quantity)
			}
		}
	}

	if !g.Unresolved.Empty() {
		fmt.Fprintln(out, "\nUnresolved identifiers:")
		if len(g.Unresolved.PinTypes) > 0 {
			fmt.Fprintf(out, "  placement types: %s\n", joinInts(g.Unresolved.PinTypes))
		}
		if len(g.Unresolved.Commodities) > 0 {
			fmt.Fprintf(out, "  commodities: %s\n", joinInts(g.Unresolved.Commodities))
		}
	}
}

// linkNeighbors collects each node's outgoing structural neighbors from the
// connectivity graph, sorted for stable output.
func linkNeighbors(g *layout.Graph) map[int][]int {
	out := make(map[int][]int)
	cg, err := g.Connectivity()
	if err != nil {
		return out
	}
	adjacency, err := cg.AdjacencyMap()
	if err != nil {
		return out
	}
	for src, targets := range adjacency {
		for dst := range targets {
			out[src] = append(out[src], dst)
		}
		sort.Ints(out[src])
	}
	return out
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
