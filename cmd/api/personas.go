package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/companion/backend/internal/model/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Validate and list the configured personas",
	Long: `Loads persona definitions the same way the server does and prints the
resulting registry. Exits non-zero when no valid persona is found.`,
	RunE: runPersonas,
}

func runPersonas(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	items, err := persona.Load(personaSource(cfg.Persona))
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}
	registry := persona.NewRegistry(items, cfg.Persona.Default)
	if len(registry.List()) == 0 {
		return persona.ErrNoPersonas
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTITLE\tDEFAULT")
	for _, p := range registry.List() {
		def := ""
		if p.ID == registry.DefaultID() {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Title, def)
	}
	return w.Flush()
}
