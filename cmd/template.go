package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"colony/internal/layout"
	"colony/internal/templates"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage the layout template library",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templates.Open(cfg.TemplatesDB)
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.List()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No templates stored.")
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s %3d placements  planet %-6d %s\n",
				info.Name, info.PinCount, info.PlanetID, info.Comment)
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Parse and display a stored template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templates.Open(cfg.TemplatesDB)
		if err != nil {
			return err
		}
		defer store.Close()

		body, err := store.Load(args[0])
		if err != nil {
			return err
		}
		rec, err := layout.Decode(body)
		if err != nil {
			return err
		}
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		g, err := layout.Parse(rec, reg)
		if err != nil {
			return err
		}
		printGraph(cmd, g, reg)
		return nil
	},
}

var templateImportCmd = &cobra.Command{
	Use:   "import NAME FILE",
	Short: "Store a layout record file as a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read layout file: %w", err)
		}
		store, err := templates.Open(cfg.TemplatesDB)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Save(args[0], data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q\n", args[0])
		return nil
	},
}

var templateExportCmd = &cobra.Command{
	Use:   "export NAME FILE",
	Short: "Write a stored template back out as a layout record file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templates.Open(cfg.TemplatesDB)
		if err != nil {
			return err
		}
		defer store.Close()

		body, err := store.Load(args[0])
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], append(body, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write layout file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", args[0], args[1])
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a stored template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := templates.Open(cfg.TemplatesDB)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
		return nil
	},
}

func init() {
	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateImportCmd,
		templateExportCmd, templateDeleteCmd)
	rootCmd.AddCommand(templateCmd)
}
