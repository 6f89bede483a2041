package main

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
	"github.com/MarcoPoloResearchLab/studyhub/internal/ui"
	"github.com/MarcoPoloResearchLab/studyhub/internal/views"
	"github.com/spf13/cobra"
)

func newNotesCommand(state *cli) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "List, add, edit and remove notes",
	}
	notesCmd.AddCommand(
		newNotesListCommand(state),
		newNotesAddCommand(state),
		newNotesShowCommand(state),
		newNotesEditCommand(state),
		newNotesRemoveCommand(state),
	)
	return notesCmd
}

func noteIDs(items []notes.Note) []string {
	ids := make([]string, 0, len(items))
	for _, note := range items {
		ids = append(ids, note.ID)
	}
	return ids
}

func (s *cli) findNote(arg string) (notes.Note, error) {
	id, err := resolveID(noteIDs(s.app.Notes.All()), arg)
	if err != nil {
		return notes.Note{}, err
	}
	note, _ := s.app.Notes.FindByID(id)
	return note, nil
}

func newNotesListCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recent first",
		Args:  cobra.NoArgs,
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			items := state.app.Notes.All()
			if subject != "" {
				items = views.NotesBySubject(items, subject)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No notes yet.")
				return nil
			}
			for _, note := range items {
				fmt.Fprint(out, ui.FormatNoteListItem(note))
			}
			return nil
		}),
	}
	cmd.Flags().StringP("subject", "s", "", "only notes filed under this subject")
	return cmd
}

func newNotesAddCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a note",
		Args:  cobra.MaximumNArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			input := notes.NoteInput{}
			if len(args) == 1 {
				input.Title = args[0]
			}
			input.Subject, _ = cmd.Flags().GetString("subject")
			input.Content, _ = cmd.Flags().GetString("content")

			note, err := state.app.Notes.Create(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created note %s", ui.ShortID(note.ID))))
			return nil
		}),
	}
	cmd.Flags().StringP("subject", "s", "", "subject the note is filed under")
	cmd.Flags().StringP("content", "c", "", "markdown body")
	return cmd
}

func newNotesShowCommand(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note rendered as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			note, err := state.findNote(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, ui.FormatNoteHeader(note))
			fmt.Fprint(out, ui.RenderMarkdown(note.Content))
			return nil
		}),
	}
}

func newNotesEditCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, subject or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			note, err := state.findNote(args[0])
			if err != nil {
				return err
			}
			var update notes.NoteUpdate
			for flag, target := range map[string]**string{
				"title":   &update.Title,
				"subject": &update.Subject,
				"content": &update.Content,
			} {
				if cmd.Flags().Changed(flag) {
					value, _ := cmd.Flags().GetString(flag)
					*target = &value
				}
			}
			if update.IsEmpty() {
				return fmt.Errorf("nothing to change: pass --title, --subject or --content")
			}
			if _, _, err := state.app.Notes.Update(cmd.Context(), note.ID, update); err != nil {
				return fmt.Errorf("failed to update note: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Updated note %s", ui.ShortID(note.ID))))
			return nil
		}),
	}
	cmd.Flags().StringP("title", "t", "", "new title")
	cmd.Flags().StringP("subject", "s", "", "new subject")
	cmd.Flags().StringP("content", "c", "", "new markdown body")
	return cmd
}

func newNotesRemoveCommand(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a note",
		Args:  cobra.ExactArgs(1),
		RunE: state.withApp(func(cmd *cobra.Command, args []string) error {
			note, err := state.findNote(args[0])
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			out := cmd.OutOrStdout()
			if !force && !ui.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete note %q (%s)?", note.Title, ui.ShortID(note.ID))) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			if _, err := state.app.Notes.Delete(cmd.Context(), note.ID); err != nil {
				return fmt.Errorf("failed to delete note: %w", err)
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Deleted note %s", ui.ShortID(note.ID))))
			return nil
		}),
	}
	cmd.Flags().BoolP("force", "f", false, "skip confirmation")
	return cmd
}
