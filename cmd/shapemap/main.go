// Package main provides the shapemap CLI.
//
// shapemap inspects mappings between registered shapes:
//   - check validates a rule file and compiles every pair it names
//   - plan prints or writes the plan of one pair
//   - suggest turns inferred member matches into a reviewable rule file
//   - types lists the shapes rule files can refer to
//
// Without --rules the built-in store/warehouse demo rules are used.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

type globalFlags struct {
	rules   string
	verbose bool
	noColor bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:     "shapemap",
		Short:   "Inspect and verify object-graph mappings",
		Version: version,
		Long: `shapemap resolves how each target member of a shape pair is populated.

Rule files name shapes as "alias.Name" (store.Order, warehouse.Order).
Without --rules the built-in demo rules for the store and warehouse shapes are used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVarP(&flags.rules, "rules", "r", "", "YAML rule file (default: built-in demo rules)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log compiler debug records to stderr")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		checkCmd(flags),
		planCmd(flags),
		suggestCmd(flags),
		typesCmd(flags),
	)

	return root
}
