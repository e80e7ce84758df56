package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"colony/internal/generator"
	"colony/internal/recipes"
	"colony/internal/templates"
)

var (
	genProducts     []string
	genStorageType  int
	genLaunchpad    int
	genOut          string
	genSaveTemplate string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a layout record from a requested production set",
	Long: `Expands a set of requested commodities into a fully linked and routed
layout record using the recipe dependency table, placing production units
across the fixed slot geometry around the storage and launchpad anchors.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringArrayVarP(&genProducts, "product", "p", nil,
		"commodity to produce, as NAME=COUNT (repeatable)")
	generateCmd.Flags().IntVar(&genStorageType, "storage-type", 0,
		"placement-type id for the storage anchor")
	generateCmd.Flags().IntVar(&genLaunchpad, "launchpad-type", 0,
		"placement-type id for the launchpad anchor")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "",
		"write the generated record to a file instead of stdout")
	generateCmd.Flags().StringVar(&genSaveTemplate, "save-template", "",
		"also store the generated record in the template library under this name")
	_ = generateCmd.MarkFlagRequired("product")
	_ = generateCmd.MarkFlagRequired("storage-type")
	_ = generateCmd.MarkFlagRequired("launchpad-type")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	counts, err := parseProducts(genProducts)
	if err != nil {
		return err
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	table, err := recipes.Load(reg, recipes.DefaultSources(cfg.RecipesDir))
	if err != nil {
		return err
	}

	rec, err := generator.Generate(counts, genStorageType, genLaunchpad, reg, table)
	if err != nil {
		return err
	}
	data, err := rec.Encode()
	if err != nil {
		return err
	}

	if genSaveTemplate != "" {
		store, err := templates.Open(cfg.TemplatesDB)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(genSaveTemplate, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved template %q\n", genSaveTemplate)
	}

	if genOut != "" {
		if err := os.WriteFile(genOut, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write layout file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", genOut)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// parseProducts turns repeated NAME=COUNT flags into a request map.
func parseProducts(specs []string) (map[string]int, error) {
	counts := make(map[string]int, len(specs))
	for _, spec := range specs {
		name, countStr, found := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid product %q, expected NAME=COUNT", spec)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("invalid count in product %q, expected a positive integer", spec)
		}
		counts[name] += count
	}
	return counts, nil
}
