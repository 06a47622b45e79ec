package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errCheckFailed = errors.New("check failed")

func checkCmd(flags *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a rule file and compile every pair it names",
		Long: `check validates the structure of the rule file, registers its rules
(reporting conflicts and unknown members), then compiles every pair with both
types named, including the nested pairs they reach.

Warnings from planning, such as unmapped target members, fail the check
only with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checking %s\n", s.source)

			res := s.validate()
			if res.IsValid() {
				if err := s.apply(); err != nil {
					res.AddError("rules_rejected", err.Error(), "", "")
				}
			}

			if res.IsValid() {
				for _, sig := range s.pairs() {
					n, err := s.m.Precompile(sig.Source, sig.Target, sig.Intent)
					if err != nil {
						res.AddError("compile_failed", err.Error(), sig.String(), "")
						continue
					}

					p, err := s.m.GetPlan(sig.Source, sig.Target, sig.Intent)
					if err != nil {
						res.AddError("compile_failed", err.Error(), sig.String(), "")
						continue
					}

					res.Merge(p.Diagnostics)
					fmt.Fprintf(out, "%s %s (%d pairs)\n", color.GreenString("compiled"), sig, n)
				}
			}

			printDiagnostics(out, res)
			fmt.Fprintln(out, summary(res))

			if !res.IsValid() || (strict && len(res.Warnings) > 0) {
				return errCheckFailed
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings too")

	return cmd
}
