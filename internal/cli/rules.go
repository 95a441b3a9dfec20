package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/evalguard/internal/evalguard"
)

type ruleRow struct {
	Pattern     string             `json:"pattern" yaml:"pattern"`
	Description string             `json:"description" yaml:"description"`
	Category    evalguard.Category `json:"category" yaml:"category"`
	Source      string             `json:"source" yaml:"source"`
}

func newRulesCmd(root *rootOptions) *cobra.Command {
	var (
		rulesGlob string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active rule catalog in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if rulesGlob == "" {
				rulesGlob = root.cfg.Guard.RulesGlob
			}
			custom, err := evalguard.LoadRules(rulesGlob)
			if err != nil {
				return err
			}

			var rows []ruleRow
			for _, r := range evalguard.DefaultRules() {
				rows = append(rows, ruleRow{r.Source(), r.Description, r.Category, "default"})
			}
			for _, r := range custom {
				rows = append(rows, ruleRow{r.Source(), r.Description, r.Category, "file"})
			}

			if format != formatText {
				return writeStructured(cmd.OutOrStdout(), format, rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tCATEGORY\tSOURCE\tDESCRIPTION\tPATTERN")
			for i, row := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, row.Category, row.Source, row.Description, row.Pattern)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&rulesGlob, "rules", "", "Glob of rule files (overrides EVALGUARD_RULES)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text|json|yaml)")
	return cmd
}
