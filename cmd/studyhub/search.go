package main

import (
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/studyhub/internal/ui"
	"github.com/MarcoPoloResearchLab/studyhub/internal/views"
	"github.com/spf13/cobra"
)

func newSubjectsCommand(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List note subjects with their note counts",
		Args:  cobra.NoArgs,
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			subjects := views.BuildSubjectList(state.app.Notes.All())
			out := cmd.OutOrStdout()
			if len(subjects) == 0 {
				fmt.Fprintln(out, "No subjects yet.")
				return nil
			}
			fmt.Fprint(out, ui.FormatSubjectList(subjects))
			return nil
		}),
	}
}

func newSearchCommand(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query...>",
		Short: "Search notes, plans and sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			results := views.Search(views.Corpus{
				Notes:    state.app.Notes.All(),
				Plans:    state.app.Plans.All(),
				Sessions: state.app.Sessions.All(),
			}, query)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "Nothing matches %q.\n", query)
				return nil
			}
			for _, result := range results {
				fmt.Fprint(out, ui.FormatSearchResult(result))
			}
			return nil
		}),
	}
}
