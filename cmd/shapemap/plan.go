package main

import (
	"fmt"
	"reflect"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shape-mapper/internal/gen"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
)

type planFlags struct {
	intent string
	format string
	out    string
	nested bool
}

func planCmd(flags *globalFlags) *cobra.Command {
	pf := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan SOURCE TARGET",
		Short: "Show how each target member of a pair is populated",
		Example: `  shapemap plan store.Order warehouse.Order
  shapemap plan store.Order warehouse.Order --intent merge --format yaml
  shapemap plan store.Order warehouse.Order --nested --out plans/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags)
			if err != nil {
				return err
			}

			if err := s.apply(); err != nil {
				return err
			}

			src, err := s.resolveType(args[0])
			if err != nil {
				return err
			}

			dst, err := s.resolveType(args[1])
			if err != nil {
				return err
			}

			intent, err := node.ParseIntent(pf.intent)
			if err != nil {
				return err
			}

			plans, err := collectPlans(s, src, dst, intent, pf.nested)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if pf.out != "" {
				files, err := gen.PlanFiles(plans...)
				if err != nil {
					return err
				}

				if err := gen.WriteFiles(files, pf.out); err != nil {
					return err
				}

				for _, f := range files {
					fmt.Fprintf(out, "%s %s\n", color.GreenString("wrote"), f.Filename)
				}

				return nil
			}

			for _, p := range plans {
				switch pf.format {
				case "yaml":
					data, err := plan.ExportYAML(p)
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "---\n%s", data)
				case "text":
					fmt.Fprint(out, plan.FormatReport(p))
					printDiagnostics(out, &p.Diagnostics)
				default:
					return fmt.Errorf("unknown format %q, expected text or yaml", pf.format)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&pf.intent, "intent", "i", "create", "Intent: create, merge or overwrite")
	cmd.Flags().StringVarP(&pf.format, "format", "f", "text", "Output format: text or yaml")
	cmd.Flags().StringVarP(&pf.out, "out", "o", "", "Write one YAML file per plan into this directory")
	cmd.Flags().BoolVar(&pf.nested, "nested", false, "Include the plans of nested pairs")

	return cmd
}

// collectPlans compiles the pair and returns its plan, followed by the
// plans of the nested pairs when nested is set.
func collectPlans(s *session, src, dst reflect.Type, intent node.Intent, nested bool) ([]*plan.MappingPlan, error) {
	var (
		dealer node.Dealer
		plans  []*plan.MappingPlan
	)

	dealer.Needs(node.NewSignature(intent, src, dst))

	for {
		sig, ok := dealer.NextNeeds()
		if !ok {
			break
		}

		compiled, err := s.m.Link(sig)
		if err != nil {
			return nil, err
		}

		plans = append(plans, compiled.Plan())

		if !nested {
			break
		}

		for _, n := range compiled.Plan().Nested {
			dealer.Needs(n)
		}
	}

	return plans, nil
}
