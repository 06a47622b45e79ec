package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shape-mapper/internal/mapping"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
)

func suggestCmd(flags *globalFlags) *cobra.Command {
	var (
		out       string
		withRules bool
	)

	cmd := &cobra.Command{
		Use:   "suggest SOURCE TARGET",
		Short: "Write the inferred member matches of a pair as a rule file",
		Long: `suggest plans the pair and every nested pair it reaches, and writes the
members matched by name as one_to_one entries. Target members left without
a source are listed under ignore so that the file passes a strict check
once reviewed.

By default the rule file is not applied, so the output shows what matching
alone would do. Use --with-rules to plan on top of the existing rules.`,
		Example: `  shapemap suggest store.Order warehouse.Order
  shapemap suggest store.Customer warehouse.Customer -o customer.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags)
			if err != nil {
				return err
			}

			if withRules {
				if err := s.apply(); err != nil {
					return err
				}
			}

			src, err := s.resolveType(args[0])
			if err != nil {
				return err
			}

			dst, err := s.resolveType(args[1])
			if err != nil {
				return err
			}

			plans, err := collectPlans(s, src, dst, node.IntentCreateNew, true)
			if err != nil {
				return err
			}

			mf := plan.ExportSuggestions(plans...)

			if out != "" {
				if err := mapping.WriteFile(mf, out); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d type mappings)\n",
					color.GreenString("wrote"), out, len(mf.TypeMappings))

				return nil
			}

			data, err := mapping.Marshal(mf)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the rule file here instead of stdout")
	cmd.Flags().BoolVar(&withRules, "with-rules", false, "Apply the rule file before planning")

	return cmd
}
