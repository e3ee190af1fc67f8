package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramekin/ramekin-web/internal/mealplan"
)

func weekCmd(a *app) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "week [date]",
		Short: "Show the meal plan for the week containing date (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			day := time.Now()
			if len(args) == 1 {
				var err error
				if day, err = mealplan.ParseLocalDate(args[0]); err != nil {
					return err
				}
			}
			start := mealplan.Monday(day)
			for ; offset > 0; offset-- {
				start = mealplan.NextWeek(start)
			}
			for ; offset < 0; offset++ {
				start = mealplan.PrevWeek(start)
			}

			from, to := mealplan.NewGrid(start, nil).Range()
			plans, err := a.client.ListMealPlans(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			return printWeek(a.out, mealplan.NewGrid(start, plans))
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Weeks to move forward (negative for back)")
	return cmd
}

// printWeek writes one line per day and meal type that has something planned.
func printWeek(out io.Writer, grid *mealplan.Grid) error {
	days := grid.Days()
	fmt.Fprintf(out, "Week of %s\n", mealplan.FormatDayHeader(days[0]))
	if grid.Len() == 0 {
		fmt.Fprintln(out, "Nothing planned")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, day := range days {
		header := mealplan.FormatDayHeader(day)
		for _, mt := range mealplan.MealTypes() {
			for _, plan := range grid.Meals(day, mt) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", header, mealplan.MealTypeLabel(mt), plan.RecipeTitle)
				header = ""
			}
		}
	}
	return tw.Flush()
}
