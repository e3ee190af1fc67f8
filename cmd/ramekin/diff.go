package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramekin/ramekin-web/internal/recipediff"
)

// ANSI markers for removed and added words.
const (
	ansiRemoved = "\033[9;31m"
	ansiAdded   = "\033[32m"
	ansiReset   = "\033[0m"
)

func diffCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "diff <recipe-id> <version-a> <version-b>",
		Short: "Compare two versions of a recipe word by word",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			recipeID := args[0]

			older, err := a.client.GetVersion(cmd.Context(), recipeID, args[1])
			if err != nil {
				return err
			}
			newer, err := a.client.GetVersion(cmd.Context(), recipeID, args[2])
			if err != nil {
				return err
			}

			changes := recipediff.Compare(older, newer)
			if len(changes) == 0 {
				fmt.Fprintln(a.out, "No differences")
				return nil
			}
			printChanges(a.out, changes, plain)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Mark changes with [-removed-] and {+added+} instead of colors")
	return cmd
}

func printChanges(out io.Writer, changes []recipediff.FieldChange, plain bool) {
	for i, change := range changes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s\n", change.Label)
		fmt.Fprintln(out, renderParts(change.Parts, plain))
	}
}

func renderParts(parts []recipediff.Part, plain bool) string {
	var b strings.Builder
	for _, p := range parts {
		switch {
		case p.Removed && plain:
			b.WriteString("[-" + p.Value + "-]")
		case p.Added && plain:
			b.WriteString("{+" + p.Value + "+}")
		case p.Removed:
			b.WriteString(ansiRemoved + p.Value + ansiReset)
		case p.Added:
			b.WriteString(ansiAdded + p.Value + ansiReset)
		default:
			b.WriteString(p.Value)
		}
	}
	return b.String()
}
