package main

import (
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/studyhub/internal/preferences"
	"github.com/spf13/cobra"
)

const toggleArg = "toggle"

func newPrefsCommand(state *cli) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		Args:  cobra.NoArgs,
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			snapshot := state.app.Preferences.Snapshot(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "theme:   %s\n", snapshot.Theme)
			fmt.Fprintf(out, "sidebar: %s\n", sidebarLabel(snapshot.SidebarCollapsed))
			return nil
		}),
	}
	prefsCmd.AddCommand(newPrefsThemeCommand(state), newPrefsSidebarCommand(state))
	return prefsCmd
}

func newPrefsThemeCommand(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or set the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(preferences.ThemeDark), string(preferences.ThemeLight), toggleArg},
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := state.app.Preferences
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, store.Theme(ctx))
				return nil
			}
			if strings.EqualFold(args[0], toggleArg) {
				theme, err := store.ToggleTheme(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, theme)
				return nil
			}
			theme, ok := preferences.ParseTheme(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", preferences.ErrUnknownTheme, args[0])
			}
			if err := store.SetTheme(ctx, theme); err != nil {
				return err
			}
			fmt.Fprintln(out, theme)
			return nil
		}),
	}
}

func newPrefsSidebarCommand(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "sidebar [on|off|toggle]",
		Short:     "Show or set whether the sidebar is collapsed",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off", toggleArg},
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := state.app.Preferences
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, sidebarLabel(store.SidebarCollapsed(ctx)))
				return nil
			}
			var collapsed bool
			switch strings.ToLower(args[0]) {
			case toggleArg:
				toggled, err := store.ToggleSidebar(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, sidebarLabel(toggled))
				return nil
			case "on":
				collapsed = true
			case "off":
				collapsed = false
			default:
				return fmt.Errorf("expected on, off or toggle, got %q", args[0])
			}
			if err := store.SetSidebarCollapsed(ctx, collapsed); err != nil {
				return err
			}
			fmt.Fprintln(out, sidebarLabel(collapsed))
			return nil
		}),
	}
}

// sidebarLabel names the collapsed state; "on" means collapsed.
func sidebarLabel(collapsed bool) string {
	if collapsed {
		return "collapsed"
	}
	return "expanded"
}
