package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models [pattern]",
	Short: "List the models available to /model",
	Long: `List the model catalog.

An optional glob pattern filters by identifier or display name; a
pattern without wildcards matches anywhere. Examples:
  superchat models
  superchat models 'claude*'
  superchat models gemini --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModels,
}

var modelsJSON bool

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Print the catalog as JSON")
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	}
	models, err := cat.Filter(pattern)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if modelsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}
	printModels(out, models)
	return nil
}

func printModels(w io.Writer, models []*catalog.Model) {
	if len(models) == 0 {
		fmt.Fprintln(w, "No models match.")
		return
	}

	idWidth, nameWidth := len("ID"), len("MODEL")
	for _, m := range models {
		idWidth = max(idWidth, len(m.ID))
		nameWidth = max(nameWidth, len([]rune(m.DisplayName())))
	}

	fmt.Fprintf(w, "%-*s  %-*s  %11s  %8s  %8s\n", idWidth, "ID", nameWidth, "MODEL", "CONTEXT", "IN $/M", "OUT $/M")
	for _, m := range models {
		fmt.Fprintf(w, "%-*s  %-*s  %11s  %8.2f  %8.2f\n",
			idWidth, m.ID,
			nameWidth, m.DisplayName(),
			humanize.Comma(int64(m.ContextLength)),
			m.InputCost, m.OutputCost)
	}
}
