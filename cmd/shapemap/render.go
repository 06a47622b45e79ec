package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"shape-mapper/internal/diagnostic"
)

// printDiagnostics writes one colored line per diagnostic, errors first.
func printDiagnostics(w io.Writer, d *diagnostic.Diagnostics) {
	for _, item := range d.All() {
		fmt.Fprintf(w, "%s %s\n", severityLabel(item.Severity), item.String())

		for _, s := range item.Suggestions {
			fmt.Fprintf(w, "    %s %s\n", color.HiBlackString("hint:"), s)
		}
	}
}

func severityLabel(s diagnostic.DiagnosticSeverity) string {
	label := fmt.Sprintf("%-7s", strings.ToUpper(s.String()))

	switch s {
	case diagnostic.DiagnosticError:
		return color.RedString(label)
	case diagnostic.DiagnosticWarning:
		return color.YellowString(label)
	default:
		return color.CyanString(label)
	}
}

// summary renders "N errors, N warnings, N infos" with the counts colored.
func summary(d *diagnostic.Diagnostics) string {
	errs := fmt.Sprintf("%d errors", len(d.Errors))
	if len(d.Errors) > 0 {
		errs = color.RedString(errs)
	}

	warns := fmt.Sprintf("%d warnings", len(d.Warnings))
	if len(d.Warnings) > 0 {
		warns = color.YellowString(warns)
	}

	return fmt.Sprintf("%s, %s, %d infos", errs, warns, len(d.Infos))
}
