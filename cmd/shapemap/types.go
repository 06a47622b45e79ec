package main

import (
	"fmt"
	"reflect"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shape-mapper/internal/analyze"
)

func typesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the shapes rule files can refer to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			catalog := s.m.Catalog()

			for _, t := range catalog.Types() {
				fmt.Fprintf(out, "%s %s\n", color.CyanString(analyze.TypeString(t)), color.HiBlackString(t.Kind().String()))

				for _, c := range catalog.Constructors(t) {
					fmt.Fprintf(out, "    constructor %s\n", c)
				}

				if t.Kind() == reflect.Interface {
					for _, impl := range catalog.Implementations(t) {
						fmt.Fprintf(out, "    implemented by %s\n", analyze.TypeString(impl))
					}
				}
			}

			return nil
		},
	}
}
