package main

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/studyhub/internal/ui"
	"github.com/spf13/cobra"
)

func newSessionsCommand(state *cli) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Review recorded study sessions",
	}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List study sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			items := state.app.Sessions.All()
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No study sessions recorded.")
				return nil
			}
			for _, session := range items {
				fmt.Fprint(out, ui.FormatSessionListItem(session))
			}
			return nil
		}),
	})
	return sessionsCmd
}
